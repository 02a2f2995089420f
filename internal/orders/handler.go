package orders

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/storefront/internal/apperr"
	"github.com/joao-fontenele/storefront/internal/auth"
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

func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpapi.WriteFailure(w, h.logger, http.StatusUnauthorized, apperr.Unauthorized("missing bearer token"))
		return
	}

	orders, err := h.service.Mine(r.Context(), principal.UserID)
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	h.logger.Info("orders listed", "user_id", principal.UserID, "count", len(orders))
	httpapi.WriteOK(w, h.logger, "", orders)
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpapi.WriteFailure(w, h.logger, http.StatusUnauthorized, apperr.Unauthorized("missing bearer token"))
		return
	}

	order, err := h.service.Checkout(r.Context(), principal)
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	httpapi.WriteOK(w, h.logger, "Checkout successful.", order)
}
