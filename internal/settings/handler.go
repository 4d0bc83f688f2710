package settings

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmledger/pharmledger/internal/platform/httpx"
	"github.com/pharmledger/pharmledger/internal/shared"
)

// Handler wires HTTP endpoints for settings.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs settings handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/report-info", h.handleGetReportInfo)
	r.Put("/report-info", h.handlePutReportInfo)
	r.Get("/theme", h.handleGetTheme)
	r.Put("/theme", h.handlePutTheme)
	r.Post("/pin", h.handleChangePIN)
}

type reportInfo struct {
	FacilityName string `json:"facilityName"`
	PreparedBy   string `json:"preparedBy"`
}

func (h *Handler) handleGetReportInfo(w http.ResponseWriter, r *http.Request) {
	facility, preparedBy, err := h.service.ReportInfo(r.Context())
	if err != nil {
		h.logger.Error("get report info", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reportInfo{FacilityName: facility, PreparedBy: preparedBy})
}

func (h *Handler) handlePutReportInfo(w http.ResponseWriter, r *http.Request) {
	var req reportInfo
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("settings: decode request: %w", shared.ErrValidation))
		return
	}
	if err := h.service.SetReportInfo(r.Context(), req.FacilityName, req.PreparedBy); err != nil {
		h.logger.Error("set report info", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

type themeBody struct {
	Theme string `json:"theme"`
}

func (h *Handler) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.service.Theme(r.Context())
	if err != nil {
		h.logger.Error("get theme", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, themeBody{Theme: theme})
}

func (h *Handler) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	var req themeBody
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("settings: decode request: %w", shared.ErrValidation))
		return
	}
	if err := h.service.SetTheme(r.Context(), req.Theme); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

type changePINRequest struct {
	CurrentCode string `json:"currentCode"`
	NewCode     string `json:"newCode"`
}

func (h *Handler) handleChangePIN(w http.ResponseWriter, r *http.Request) {
	var req changePINRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("settings: decode request: %w", shared.ErrValidation))
		return
	}
	if err := h.service.ChangePIN(r.Context(), req.CurrentCode, req.NewCode); err != nil {
		h.logger.Warn("change pin", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("pin changed")
	w.WriteHeader(http.StatusNoContent)
}
