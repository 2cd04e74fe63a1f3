package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/usecase"
)

type membershipCreateRequest struct {
	UserID         string `json:"user_id"`
	MembershipType string `json:"membership_type"`
	StartDate      string `json:"start_date"` // YYYY-MM-DD
	EndDate        string `json:"end_date"`   // YYYY-MM-DD
	PaymentAmount  int64  `json:"payment_amount"`
	PaymentMethod  string `json:"payment_method"`
	Notes          string `json:"notes"`
}

func (s *Server) handleMembershipCreate(w http.ResponseWriter, r *http.Request) {
	var req membershipCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}

	m, err := s.membershipUC.Create(r.Context(), usecase.MembershipRequest{
		UserID:         req.UserID,
		MembershipType: model.MembershipType(req.MembershipType),
		StartDate:      start,
		EndDate:        end,
		PaymentAmount:  req.PaymentAmount,
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMembershipDTO(m))
}

func (s *Server) handleMembershipList(w http.ResponseWriter, r *http.Request) {
	ms, err := s.membershipUC.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": toMembershipDTOs(ms)})
}

func (s *Server) handleMembershipActive(w http.ResponseWriter, r *http.Request) {
	ms, err := s.membershipUC.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": toMembershipDTOs(ms)})
}

func (s *Server) handleMembershipExpired(w http.ResponseWriter, r *http.Request) {
	ms, err := s.membershipUC.ListExpired(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": toMembershipDTOs(ms)})
}

func (s *Server) handleMembershipGet(w http.ResponseWriter, r *http.Request) {
	m, err := s.membershipUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMembershipDTO(m))
}

type membershipUpdateRequest struct {
	EndDate       *string `json:"end_date"` // YYYY-MM-DD
	PaymentStatus *string `json:"payment_status"`
	PaymentMethod *string `json:"payment_method"`
	Notes         *string `json:"notes"`
	IsActive      *bool   `json:"is_active"`
}

func (s *Server) handleMembershipUpdate(w http.ResponseWriter, r *http.Request) {
	var req membershipUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	upd := usecase.MembershipUpdate{
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		IsActive:      req.IsActive,
	}
	if req.EndDate != nil {
		end, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return
		}
		upd.EndDate = &end
	}
	if req.PaymentStatus != nil {
		status := model.PaymentStatus(*req.PaymentStatus)
		upd.PaymentStatus = &status
	}

	m, err := s.membershipUC.Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMembershipDTO(m))
}

func (s *Server) handleMembershipDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.membershipUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMembershipRenew(w http.ResponseWriter, r *http.Request) {
	m, err := s.membershipUC.Renew(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMembershipDTO(m))
}

type paymentRequest struct {
	Method string `json:"method"`
}

func (s *Server) handleMembershipPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := s.membershipUC.RecordPayment(r.Context(), chi.URLParam(r, "id"), req.Method)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMembershipDTO(m))
}

// handleNotifyExpiring triggers the reminder sweep on demand, outside the
// scheduler cadence.
func (s *Server) handleNotifyExpiring(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}
	sent, err := s.notifyUC.NotifyExpiring(r.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
