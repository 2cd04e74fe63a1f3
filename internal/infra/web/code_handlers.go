package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/usecase"
)

// Upload cap for code spreadsheets.
const maxImportSize = 10 << 20 // 10 MiB

// handleCodeImport accepts a multipart form: the `file` part is the xlsx
// upload, the remaining fields carry the batch metadata.
func (s *Server) handleCodeImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	expiry, err := time.Parse("2006-01-02", r.FormValue("expiry_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "expiry_date must be YYYY-MM-DD")
		return
	}
	claims, _ := SessionFrom(r.Context())

	res, err := s.importUC.ImportCodes(r.Context(), usecase.ImportRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		SourceFile:  header.Filename,
		ExpiryDate:  expiry,
		ImportedBy:  claims.UserID(),
	}, file)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"batch":        toBatchDTO(res.Batch),
		"imported":     res.Imported,
		"duplicates":   res.Duplicates,
		"skipped_rows": res.SkippedRows,
	})
}

type assignRequest struct {
	BatchID string `json:"batch_id"`
	UserID  string `json:"user_id"`
	Count   int    `json:"count"`
	// SendEmail queues delivery of the claimed codes to the member.
	SendEmail bool `json:"send_email"`
}

func (s *Server) handleCodeAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	codes, err := s.assignUC.Assign(r.Context(), req.BatchID, req.UserID, req.Count)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if req.SendEmail && s.jobs != nil {
		userID, batchID := req.UserID, req.BatchID
		claimed := make([]*model.AccessCode, len(codes))
		copy(claimed, codes)
		if err := s.jobs.Submit(func(ctx context.Context) error {
			return s.notifyUC.DeliverAccessCodes(ctx, userID, batchID, claimed)
		}); err != nil {
			s.log.Warn().Err(err).Str("batch_id", batchID).Msg("mail job not queued")
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": toCodeDTOs(codes)})
}

func (s *Server) handleBatchList(w http.ResponseWriter, r *http.Request) {
	batches, err := s.batchUC.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": toBatchDTOs(batches)})
}

func (s *Server) handleBatchGet(w http.ResponseWriter, r *http.Request) {
	batch, err := s.batchUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchDTO(batch))
}

func (s *Server) handleBatchCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := s.codeUC.ListByBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": toCodeDTOs(codes)})
}

func (s *Server) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := s.batchUC.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed_codes": removed})
}

type codeUpdateRequest struct {
	IsUsed   *bool   `json:"is_used"`
	AssignTo *string `json:"assign_to"`
}

func (s *Server) handleCodeUpdate(w http.ResponseWriter, r *http.Request) {
	var req codeUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	code, err := s.codeUC.Update(r.Context(), chi.URLParam(r, "id"), usecase.CodeUpdate{
		IsUsed:   req.IsUsed,
		AssignTo: req.AssignTo,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCodeDTO(code))
}

func (s *Server) handleCodeUnassign(w http.ResponseWriter, r *http.Request) {
	code, err := s.codeUC.Unassign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCodeDTO(code))
}
