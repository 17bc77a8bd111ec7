package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
)

// Handler exposes report pages and xlsx exports.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) page(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, totals, pagination, err := h.service.Page(r.Context(), kind, filtersFromQuery(r))
		if err != nil {
			h.logger.Error("report page", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"data":       rows,
			"totals":     totals,
			"pagination": pagination,
		})
	}
}

func (h *Handler) export(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workbook, err := h.service.Export(r.Context(), kind, filtersFromQuery(r))
		if err != nil {
			h.logger.Error("report export", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}

		filename := fmt.Sprintf("%s-report-%s.xlsx", kind, time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		if _, err := workbook.WriteTo(w); err != nil {
			h.logger.Error("stream workbook", slog.String("kind", string(kind)), slog.Any("error", err))
		}
	}
}

func filtersFromQuery(r *http.Request) Filters {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	return Filters{
		Page: page,
		From: parseDate(r.URL.Query().Get("from")),
		To:   parseDate(r.URL.Query().Get("to")),
	}
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &parsed
}
