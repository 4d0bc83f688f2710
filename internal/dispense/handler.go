package dispense

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pharmledger/pharmledger/internal/platform/httpx"
	"github.com/pharmledger/pharmledger/internal/shared"
)

// The recent-dispense table works over at most this many records.
const recentTableLimit = 100

var validate = validator.New()

// Handler wires HTTP endpoints for the dispense log.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs dispense handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers dispense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleRecord)
	r.Get("/recent", h.handleRecent)
	r.Get("/options", h.handleOptions)
	r.Delete("/{id}", h.handleDelete)
}

type dispenseRequest struct {
	DrugID     int64  `json:"drugId" validate:"required"`
	Department string `json:"department" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"required,gt=0"`
	ApprovedBy string `json:"approvedBy" validate:"required"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req dispenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("dispense: decode request: %w", shared.ErrValidation))
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("dispense: %v: %w", err, shared.ErrValidation))
		return
	}
	rec, err := h.service.RecordDispense(r.Context(), Input{
		DrugID:     req.DrugID,
		Department: req.Department,
		Quantity:   req.Quantity,
		ApprovedBy: req.ApprovedBy,
	})
	if err != nil {
		h.logger.Warn("record dispense", slog.Int64("drug_id", req.DrugID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("dispense recorded",
		slog.String("id", rec.ID),
		slog.Int64("drug_id", rec.DrugID),
		slog.Int64("quantity", rec.QuantityDispensed),
		slog.String("department", rec.Department))
	httpx.JSON(w, http.StatusCreated, rec)
}

type recentRow struct {
	SN int `json:"sn"`
	Record
}

type recentResponse struct {
	Rows        []recentRow       `json:"rows"`
	Pagination  shared.Pagination `json:"pagination"`
	PageNumbers []int             `json:"pageNumbers"`
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize <= 0 {
		pageSize = 20
	}

	records, err := h.service.Recent(r.Context(), recentTableLimit)
	if err != nil {
		h.logger.Error("recent dispenses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	c := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(records, func(a, b int) bool {
		return c.CompareString(records[a].DrugName, records[b].DrugName) < 0
	})

	p := shared.NewPagination(page, pageSize, len(records))
	start, end := p.Bounds()
	rows := make([]recentRow, 0, end-start)
	for i, rec := range records[start:end] {
		rows = append(rows, recentRow{SN: start + i + 1, Record: rec})
	}
	httpx.JSON(w, http.StatusOK, recentResponse{
		Rows:        rows,
		Pagination:  p,
		PageNumbers: shared.PageNumbers(p.Page, p.TotalPages, 2),
	})
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.Options(r.Context())
	if err != nil {
		h.logger.Error("dispense options", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, options)
}

type authRequest struct {
	AuthCode string `json:"authCode"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req authRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("dispense: decode request: %w", shared.ErrValidation))
		return
	}
	if err := h.service.DeleteDispense(r.Context(), id, req.AuthCode); err != nil {
		h.logger.Warn("delete dispense", slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("dispense record deleted", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}
