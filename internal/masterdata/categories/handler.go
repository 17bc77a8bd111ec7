package categories

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	mdshared "github.com/andino-pos/andino-pos/internal/masterdata/shared"
	"github.com/andino-pos/andino-pos/internal/platform/httpx"
	"github.com/andino-pos/andino-pos/internal/rbac"
	"github.com/andino-pos/andino-pos/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers category endpoints guarded by the capability middleware.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Route("/categories", func(r chi.Router) {
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleCategory, Action: rbac.ActionView})).Get("/", h.list)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleCategory, Action: rbac.ActionCreate})).Post("/", h.create)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleCategory, Action: rbac.ActionView})).Get("/{id}", h.show)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleCategory, Action: rbac.ActionEdit})).Put("/{id}", h.update)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleCategory, Action: rbac.ActionDelete})).Delete("/{id}", h.delete)
	})
}

type categoryForm struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=255"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	filters := mdshared.ListFilters{Page: page, Search: r.URL.Query().Get("search")}.Normalize()

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": category})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	category, err := h.service.Create(r.Context(), Category{Name: form.Name, Description: form.Description})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": category})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	category, err := h.service.Update(r.Context(), id, Category{Name: form.Name, Description: form.Description})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": category})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (categoryForm, bool) {
	var form categoryForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return categoryForm{}, false
	}
	if err := h.validator.Struct(form); err != nil {
		fields := make(map[string]string)
		for _, fieldErr := range err.(validator.ValidationErrors) {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
		httpx.ValidationProblem(w, fields)
		return categoryForm{}, false
	}
	return form, true
}
