package job

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/job/entity"
)

// Handler exposes the /jobs endpoints. All of them expect an Identity in
// the request context.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type jobResponse struct {
	Job *entity.Job `json:"job"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireIdentity(r)
	if err != nil {
		return err
	}
	res, err := h.svc.List(r.Context(), id, ListParamsFrom(r.URL.Query()))
	if err != nil {
		return err
	}
	apperror.WriteJSON(w, http.StatusOK, res)
	return nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireIdentity(r)
	if err != nil {
		return err
	}
	j, err := h.svc.Get(r.Context(), id, r.PathValue("id"))
	if err != nil {
		return err
	}
	apperror.WriteJSON(w, http.StatusOK, jobResponse{Job: j})
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireIdentity(r)
	if err != nil {
		return err
	}
	var in CreateInput
	if err := apperror.DecodeJSON(r, &in); err != nil {
		return err
	}
	in.CreatedAt = time.Time{}
	j, err := h.svc.Create(r.Context(), id, in)
	if err != nil {
		return err
	}
	h.logger.Debugw("job created", "job_id", j.ID, "user_id", id.UserID)
	apperror.WriteJSON(w, http.StatusCreated, jobResponse{Job: j})
	return nil
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireIdentity(r)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := apperror.DecodeJSON(r, &in); err != nil {
		return err
	}
	j, err := h.svc.Update(r.Context(), id, r.PathValue("id"), in)
	if err != nil {
		return err
	}
	apperror.WriteJSON(w, http.StatusOK, jobResponse{Job: j})
	return nil
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireIdentity(r)
	if err != nil {
		return err
	}
	jobID := r.PathValue("id")
	if err := h.svc.Delete(r.Context(), id, jobID); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "Job with Job ID %s is deleted", jobID)
	return nil
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireIdentity(r)
	if err != nil {
		return err
	}
	st, err := h.svc.Stats(r.Context(), id)
	if err != nil {
		return err
	}
	apperror.WriteJSON(w, http.StatusOK, st)
	return nil
}
