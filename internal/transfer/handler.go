package transfer

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmledger/pharmledger/internal/platform/httpx"
	"github.com/pharmledger/pharmledger/internal/reports"
	"github.com/pharmledger/pharmledger/internal/shared"
)

// maxImportBytes caps uploaded CSV and backup files.
const maxImportBytes = 16 << 20

// Handler wires HTTP endpoints for bulk import and export.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs transfer handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers transfer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventory.csv", h.handleExportInventoryCSV)
	r.Post("/inventory.csv", h.handleImportInventoryCSV)
	r.Get("/dispenses.csv", h.handleExportDispensesCSV)
	r.Post("/dispenses.csv", h.handleImportDispensesCSV)
	r.Get("/inventory.xlsx", h.handleExportInventoryXLSX)
	r.Get("/reports.xlsx", h.handleExportReportXLSX)
	r.Get("/backup.json", h.handleExportBackup)
	r.Post("/restore", h.handleRestore)
}

func inventoryFilter(r *http.Request) reports.InventoryFilter {
	q := r.URL.Query()
	return reports.InventoryFilter{
		Name:           q.Get("name"),
		Classification: q.Get("classification"),
		Status:         q.Get("status"),
	}
}

func dispenseFilter(r *http.Request) reports.DispenseFilter {
	q := r.URL.Query()
	return reports.DispenseFilter{
		Period:     q.Get("period"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		Department: q.Get("department"),
		Sort:       q.Get("sort"),
	}
}

func attachment(w http.ResponseWriter, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func (h *Handler) handleExportInventoryCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.InventoryRows(r.Context(), inventoryFilter(r))
	if err != nil {
		h.logger.Error("export inventory csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	attachment(w, "inventory.csv", "text/csv; charset=utf-8")
	if err := WriteInventoryCSV(w, rows); err != nil {
		h.logger.Error("write inventory csv", slog.Any("error", err))
	}
}

func (h *Handler) handleExportDispensesCSV(w http.ResponseWriter, r *http.Request) {
	rows, _, err := h.service.DispenseRows(r.Context(), dispenseFilter(r))
	if err != nil {
		h.logger.Error("export dispenses csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	attachment(w, "dispenses.csv", "text/csv; charset=utf-8")
	if err := WriteDispensesCSV(w, rows); err != nil {
		h.logger.Error("write dispenses csv", slog.Any("error", err))
	}
}

func (h *Handler) handleExportInventoryXLSX(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.InventoryRows(r.Context(), inventoryFilter(r))
	if err != nil {
		h.logger.Error("export inventory xlsx", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	attachment(w, "inventory.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := WriteInventoryXLSX(w, rows); err != nil {
		h.logger.Error("write inventory xlsx", slog.Any("error", err))
	}
}

func (h *Handler) handleExportReportXLSX(w http.ResponseWriter, r *http.Request) {
	rows, summary, err := h.service.DispenseRows(r.Context(), dispenseFilter(r))
	if err != nil {
		h.logger.Error("export report xlsx", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	attachment(w, "dispense-report.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := WriteReportXLSX(w, rows, summary); err != nil {
		h.logger.Error("write report xlsx", slog.Any("error", err))
	}
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("transfer: read upload: %w", shared.ErrValidation))
		return nil, false
	}
	return data, true
}

type importResponse struct {
	Mode     string `json:"mode"`
	Imported int    `json:"imported"`
}

func (h *Handler) handleImportInventoryCSV(w http.ResponseWriter, r *http.Request) {
	data, ok := h.readBody(w, r)
	if !ok {
		return
	}
	mode := r.URL.Query().Get("mode")
	n, err := h.service.ImportInventory(r.Context(), data, mode)
	if err != nil {
		h.logger.Warn("import inventory csv", slog.String("mode", mode), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("inventory imported", slog.String("mode", mode), slog.Int("rows", n))
	httpx.JSON(w, http.StatusOK, importResponse{Mode: mode, Imported: n})
}

func (h *Handler) handleImportDispensesCSV(w http.ResponseWriter, r *http.Request) {
	data, ok := h.readBody(w, r)
	if !ok {
		return
	}
	mode := r.URL.Query().Get("mode")
	n, err := h.service.ImportDispenses(r.Context(), data, mode)
	if err != nil {
		h.logger.Warn("import dispenses csv", slog.String("mode", mode), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("dispenses imported", slog.String("mode", mode), slog.Int("rows", n))
	httpx.JSON(w, http.StatusOK, importResponse{Mode: mode, Imported: n})
}

func (h *Handler) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.ExportBackup(r.Context())
	if err != nil {
		h.logger.Error("export backup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="pharmledger-backup.json"`)
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	data, ok := h.readBody(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	mode := q.Get("mode")
	confirm := q.Get("confirm") == "true"
	result, err := h.service.Restore(r.Context(), data, mode, confirm)
	if err != nil {
		h.logger.Warn("restore backup", slog.String("mode", mode), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("backup restored",
		slog.String("mode", mode),
		slog.Int("items", result.Items),
		slog.Int("records", result.Records))
	httpx.JSON(w, http.StatusOK, result)
}
