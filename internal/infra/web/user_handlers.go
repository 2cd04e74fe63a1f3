package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/usecase"
)

type userCreateRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
}

func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.userUC.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password, req.PhoneNumber)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if offset < 0 {
		offset = 0
	}

	users, err := s.userUC.List(r.Context(), offset, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":   toUserDTOs(users),
		"offset": offset,
		"count":  len(users),
	})
}

func (s *Server) handleUserGet(w http.ResponseWriter, r *http.Request) {
	user, err := s.userUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

type userUpdateRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Role        *string `json:"role"`
	Status      *string `json:"status"`
}

func (s *Server) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	upd := usecase.UserUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Role != nil {
		role := model.UserRole(*req.Role)
		upd.Role = &role
	}
	if req.Status != nil {
		status := model.UserStatus(*req.Status)
		upd.Status = &status
	}

	user, err := s.userUC.Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.userUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUserCodes serves a user's own unexpired codes. Members may only
// look at themselves; admins can look at anyone.
func (s *Server) handleUserCodes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, _ := SessionFrom(r.Context())
	if !claims.IsAdmin() && claims.UserID() != id {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	codes, err := s.codeUC.ListByUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": toCodeDTOs(codes)})
}

func (s *Server) handleUserMemberships(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, _ := SessionFrom(r.Context())
	if !claims.IsAdmin() && claims.UserID() != id {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	ms, err := s.membershipUC.ListByUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": toMembershipDTOs(ms)})
}
