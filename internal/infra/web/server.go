package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/worker"
	"github.com/Shadow6402/ASTT-Esport/internal/usecase"
)

// JobQueue is where handlers park fire-and-forget work (mail delivery).
type JobQueue interface {
	Submit(task worker.Task) error
}

type Server struct {
	userUC       usecase.UserUseCase
	importUC     usecase.ImportUseCase
	assignUC     usecase.AssignUseCase
	codeUC       usecase.CodeUseCase
	batchUC      usecase.BatchUseCase
	membershipUC usecase.MembershipUseCase
	statsUC      usecase.StatsUseCase
	notifyUC     usecase.NotificationUseCase

	auth *AuthManager
	jobs JobQueue
	log  *zerolog.Logger
}

func NewServer(
	userUC usecase.UserUseCase,
	importUC usecase.ImportUseCase,
	assignUC usecase.AssignUseCase,
	codeUC usecase.CodeUseCase,
	batchUC usecase.BatchUseCase,
	membershipUC usecase.MembershipUseCase,
	statsUC usecase.StatsUseCase,
	notifyUC usecase.NotificationUseCase,
	auth *AuthManager,
	jobs JobQueue,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		userUC:       userUC,
		importUC:     importUC,
		assignUC:     assignUC,
		codeUC:       codeUC,
		batchUC:      batchUC,
		membershipUC: membershipUC,
		statsUC:      statsUC,
		notifyUC:     notifyUC,
		auth:         auth,
		jobs:         jobs,
		log:          logger,
	}
}

// Router builds the full route tree. Everything under /api/v1 except the
// login route needs a session; mutating routes need the admin role.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(traceID)
	r.Use(recoverer(s.log))
	r.Use(requestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)
			r.Put("/auth/password", s.handleChangePassword)

			// Members can read their own codes and memberships.
			r.Get("/users/{id}/codes", s.handleUserCodes)
			r.Get("/users/{id}/memberships", s.handleUserMemberships)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/users", s.handleUserList)
				r.Post("/users", s.handleUserCreate)
				r.Get("/users/{id}", s.handleUserGet)
				r.Put("/users/{id}", s.handleUserUpdate)
				r.Delete("/users/{id}", s.handleUserDelete)

				r.Post("/codes/import", s.handleCodeImport)
				r.Post("/codes/assign", s.handleCodeAssign)
				r.Get("/codes/batches", s.handleBatchList)
				r.Get("/codes/batches/{id}", s.handleBatchGet)
				r.Get("/codes/batches/{id}/codes", s.handleBatchCodes)
				r.Delete("/codes/batches/{id}", s.handleBatchDelete)
				r.Put("/codes/{id}", s.handleCodeUpdate)
				r.Post("/codes/{id}/unassign", s.handleCodeUnassign)

				r.Get("/memberships", s.handleMembershipList)
				r.Post("/memberships", s.handleMembershipCreate)
				r.Get("/memberships/expiring", s.handleMembershipExpiring)
				r.Get("/memberships/expired", s.handleMembershipExpired)
				r.Get("/memberships/active", s.handleMembershipActive)
				r.Get("/memberships/{id}", s.handleMembershipGet)
				r.Put("/memberships/{id}", s.handleMembershipUpdate)
				r.Delete("/memberships/{id}", s.handleMembershipDelete)
				r.Post("/memberships/{id}/renew", s.handleMembershipRenew)
				r.Post("/memberships/{id}/payment", s.handleMembershipPayment)
				r.Post("/memberships/notify-expiring", s.handleNotifyExpiring)

				r.Get("/dashboard/stats", s.handleDashboardStats)
				r.Get("/dashboard/recent-users", s.handleRecentUsers)
			})
		})
	})
	return r
}

// ===== Response helpers =====

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinels onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrDuplicateCode):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrActiveMembershipExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrBatchesImported):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidCount),
		errors.Is(err, domain.ErrEmptyImport):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientPool):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
