package stock

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/velvetrow/salonbook/internal/http/httperr"
	"github.com/velvetrow/salonbook/pkg/logging"
)

// Handler serves the inventory admin endpoints.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a stock handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes mounts categories, products and shopping endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Put("/categories/{id}", h.RenameCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)

	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)
	r.Post("/products", h.CreateProduct)
	r.Delete("/products/{id}", h.DeleteProduct)

	r.Get("/shopping", h.ListShopping)
	r.Post("/shopping", h.CreateShopping)

	return r
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrProductFieldsRequired),
		errors.Is(err, ErrShoppingFieldsRequired),
		errors.Is(err, ErrBadQuantity),
		errors.Is(err, ErrBadItem),
		errors.Is(err, ErrBadDate):
		return httperr.Validation(err.Error()).Wrap(err)
	case errors.Is(err, ErrDuplicateCategory), errors.Is(err, ErrDuplicateBarcode):
		return httperr.Conflict(err.Error()).Wrap(err)
	case errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrNotFound):
		return httperr.NotFound(err.Error()).Wrap(err)
	}
	return err
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httperr.Validation("invalid id")
	}
	return id, nil
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	httperr.JSON(w, http.StatusOK, categories)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	c, err := h.repo.CreateCategory(r.Context(), &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusCreated, c)
}

func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	if err := h.repo.RenameCategory(r.Context(), id, &req); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "category updated"})
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if err := h.repo.DeleteCategory(r.Context(), id); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListProducts(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	httperr.JSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	p, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	p, err := h.repo.CreateProduct(r.Context(), &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	h.logger.Info("product created", "id", p.ID, "name", p.Name, "barcode", p.Barcode)
	httperr.JSON(w, http.StatusCreated, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if err := h.repo.DeleteProduct(r.Context(), id); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *Handler) ListShopping(w http.ResponseWriter, r *http.Request) {
	lists, err := h.repo.ListShopping(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if lists == nil {
		lists = []ShoppingList{}
	}
	httperr.JSON(w, http.StatusOK, lists)
}

func (h *Handler) CreateShopping(w http.ResponseWriter, r *http.Request) {
	var req ShoppingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	list, err := h.repo.CreateShopping(r.Context(), &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	h.logger.Info("shopping run recorded",
		"id", list.ID, "shop", list.ShopName, "total_cost", list.TotalCost, "month_year", list.MonthYear)
	httperr.JSON(w, http.StatusCreated, list)
}
