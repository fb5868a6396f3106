package user

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/user/entity"
)

// Handler exposes HTTP endpoints for user operations (register / login / update).
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SessionResponse is returned by every endpoint that issues a token.
type SessionResponse struct {
	User  entity.Profile `json:"user"`
	Token string         `json:"token"`
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) error {
	var req RegisterInput
	if err := apperror.DecodeJSON(r, &req); err != nil {
		return err
	}
	sess, err := h.svc.Register(r.Context(), req)
	if err != nil {
		return err
	}
	h.logger.Infow("user registered", "user_id", sess.User.ID)
	apperror.WriteJSON(w, http.StatusCreated, newSessionResponse(sess))
	return nil
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := apperror.DecodeJSON(r, &req); err != nil {
		return err
	}
	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	apperror.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
	return nil
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) error {
	id, err := auth.RequireIdentity(r)
	if err != nil {
		return err
	}
	var req ProfileInput
	if err := apperror.DecodeJSON(r, &req); err != nil {
		return err
	}
	sess, err := h.svc.UpdateProfile(r.Context(), id.UserID, req)
	if err != nil {
		return err
	}
	apperror.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
	return nil
}

func newSessionResponse(s *Session) SessionResponse {
	return SessionResponse{User: entity.ProfileOf(s.User, s.Token), Token: s.Token}
}
