package auth

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/storefront/internal/httpapi"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	userID, err := h.service.Register(r.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	httpapi.WriteOK(w, h.logger, "Registration successful.", userID)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	httpapi.WriteOK(w, h.logger, "Login successful.", token)
}
