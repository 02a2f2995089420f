package catalog

import (
	"errors"
	"log/slog"
	"maps"
	"mime/multipart"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/apperr"
	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/httpapi"
)

type Handler struct {
	service        *Service
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHandler(service *Service, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type categoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
	}
}

type productResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ImageURL     string          `json:"imageUrl"`
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Stock:        p.Stock,
		ImageURL:     p.ImageURL,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
	}
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		resp = append(resp, toCategoryResponse(&categories[i]))
	}

	h.logger.Info("categories listed", "count", len(resp))
	httpapi.WriteOK(w, h.logger, "", resp)
}

func (h *Handler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusNotFound, err)
		return
	}

	httpapi.WriteOK(w, h.logger, "", toCategoryResponse(category))
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), CategoryInput(req))
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	httpapi.WriteOK(w, h.logger, "Category created successfully.", toCategoryResponse(category))
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var req categoryRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), id, CategoryInput(req))
	if err != nil {
		httpapi.WriteFailure(w, h.logger, statusFor(err, http.StatusNotFound), err)
		return
	}

	httpapi.WriteOK(w, h.logger, "Category updated successfully.", toCategoryResponse(category))
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		httpapi.WriteFailure(w, h.logger, statusFor(err, http.StatusNotFound), err)
		return
	}

	httpapi.WriteOK(w, h.logger, "Category deleted successfully.", true)
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}

	h.logger.Info("products listed", "count", len(resp))
	httpapi.WriteOK(w, h.logger, "", resp)
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusNotFound, err)
		return
	}

	httpapi.WriteOK(w, h.logger, "", toProductResponse(product))
}

// HandleCreateProduct accepts a multipart (or urlencoded) form. Field names
// match case-insensitively; imageFile is optional.
func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, apperr.Wrap(apperr.KindValidation, "invalid form data", err))
			return
		}
		if err := r.ParseForm(); err != nil {
			httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, apperr.Wrap(apperr.KindValidation, "invalid form data", err))
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	in, err := productInputFromForm(r)
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var file multipart.File
	if fh := formFile(r, "imageFile"); fh != nil {
		file, err = fh.Open()
		if err != nil {
			httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, apperr.Wrap(apperr.KindValidation, "unreadable image file", err))
			return
		}
		defer func() { _ = file.Close() }()
		in.Image = &Upload{Filename: fh.Filename, Content: file}
	}

	product, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	httpapi.WriteOK(w, h.logger, "Product created successfully.", toProductResponse(product))
}

type addStockRequest struct {
	ProductID     int64 `json:"productId"`
	QuantityToAdd int   `json:"quantityToAdd"`
}

func (h *Handler) HandleAddStock(w http.ResponseWriter, r *http.Request) {
	var req addStockRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	product, err := h.service.AddStock(r.Context(), req.ProductID, req.QuantityToAdd)
	if err != nil {
		httpapi.WriteFailure(w, h.logger, statusFor(err, http.StatusNotFound), err)
		return
	}

	httpapi.WriteOK(w, h.logger, "Stock updated successfully.", toProductResponse(product))
}

func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httpapi.WriteFailure(w, h.logger, http.StatusNotFound, err)
		return
	}

	httpapi.WriteOK(w, h.logger, "Product deleted successfully.", true)
}

// statusFor keeps the endpoint's not-found status and reports validation and
// conflict failures with their own codes.
func statusFor(err error, notFound int) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return notFound
	}
}

func productInputFromForm(r *http.Request) (ProductInput, error) {
	in := ProductInput{
		Name:         formValue(r, "name"),
		Description:  formValue(r, "description"),
		CategoryName: formValue(r, "categoryName"),
	}

	price, err := decimal.NewFromString(formValue(r, "price"))
	if err != nil {
		return in, apperr.Validation("Price must be a number.")
	}
	in.Price = price

	if in.Stock, err = strconv.Atoi(formValue(r, "stock")); err != nil {
		return in, apperr.Validation("Stock must be an integer.")
	}

	if raw := formValue(r, "categoryId"); raw != "" {
		if in.CategoryID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return in, apperr.Validation("CategoryId must be an integer.")
		}
	}

	return in, nil
}

// formValue prefers the exact field name and falls back to the first
// case-insensitive match in sorted key order.
func formValue(r *http.Request, key string) string {
	if v := r.PostForm[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	if k, ok := foldedKey(r.PostForm, key); ok {
		return strings.TrimSpace(r.PostForm[k][0])
	}
	return ""
}

func foldedKey[V any](m map[string][]V, key string) (string, bool) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if strings.EqualFold(k, key) && len(m[k]) > 0 {
			return k, true
		}
	}
	return "", false
}

func formFile(r *http.Request, key string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	if files := r.MultipartForm.File[key]; len(files) > 0 {
		return files[0]
	}
	if k, ok := foldedKey(r.MultipartForm.File, key); ok {
		return r.MultipartForm.File[k][0]
	}
	return nil
}
