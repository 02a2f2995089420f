package cart

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/apperr"
	"github.com/joao-fontenele/storefront/internal/auth"
	"github.com/joao-fontenele/storefront/internal/domain"
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

type lineResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	ImageURL    string          `json:"imageUrl"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

func toLineResponses(lines []domain.CartLine) []lineResponse {
	resp := make([]lineResponse, 0, len(lines))
	for _, l := range lines {
		resp = append(resp, lineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			ImageURL:    l.ImageURL,
			Price:       l.Price,
			Quantity:    l.Quantity,
			TotalPrice:  l.Total(),
		})
	}
	return resp
}

func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpapi.WriteFailure(w, h.logger, http.StatusUnauthorized, apperr.Unauthorized("missing bearer token"))
		return
	}

	lines, err := h.service.Mine(r.Context(), principal.UserID)
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	httpapi.WriteOK(w, h.logger, "", toLineResponses(lines))
}

type addRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpapi.WriteFailure(w, h.logger, http.StatusUnauthorized, apperr.Unauthorized("missing bearer token"))
		return
	}

	var req addRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	lines, err := h.service.Add(r.Context(), principal.UserID, req.ProductID, req.Quantity)
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	httpapi.WriteOK(w, h.logger, "Item added to cart.", toLineResponses(lines))
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpapi.WriteFailure(w, h.logger, http.StatusUnauthorized, apperr.Unauthorized("missing bearer token"))
		return
	}

	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.service.Remove(r.Context(), principal.UserID, id); err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusNotFound, err)
		return
	}

	httpapi.WriteOK(w, h.logger, "Item removed from cart.", true)
}
