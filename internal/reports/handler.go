package reports

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/pharmledger/pharmledger/internal/dispense"
	"github.com/pharmledger/pharmledger/internal/platform/httpx"
	"github.com/pharmledger/pharmledger/internal/shared"
	"github.com/pharmledger/pharmledger/internal/stock"
)

// Table page sizes.
const (
	inventoryPageSize = 10
	dispensePageSize  = 25
)

// ItemSource loads stock items for reporting.
type ItemSource interface {
	List(ctx context.Context) ([]stock.Item, error)
}

// RecordSource loads dispense records for reporting.
type RecordSource interface {
	List(ctx context.Context) ([]dispense.Record, error)
}

// Handler wires HTTP endpoints for the reporting views.
type Handler struct {
	logger  *slog.Logger
	items   ItemSource
	records RecordSource
	now     func() time.Time
}

// NewHandler constructs reports handler.
func NewHandler(logger *slog.Logger, items ItemSource, records RecordSource) *Handler {
	return &Handler{logger: logger, items: items, records: records, now: time.Now}
}

// MountRoutes registers reporting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventory", h.handleInventory)
	r.Get("/dispenses", h.handleDispenses)
	r.Get("/summary", h.handleSummary)
}

type inventoryResponse struct {
	Rows        []InventoryRow    `json:"rows"`
	Pagination  shared.Pagination `json:"pagination"`
	PageNumbers []int             `json:"pageNumbers"`
	Message     string            `json:"message,omitempty"`
}

func (h *Handler) handleInventory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := InventoryFilter{
		Name:           q.Get("name"),
		Classification: q.Get("classification"),
		Status:         q.Get("status"),
	}
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize <= 0 {
		pageSize = inventoryPageSize
	}

	items, err := h.items.List(r.Context())
	if err != nil {
		h.logger.Error("inventory report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	now := h.now()
	filtered, err := FilterInventory(items, filter, now)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	p := shared.NewPagination(page, pageSize, len(filtered))
	start, end := p.Bounds()
	resp := inventoryResponse{
		Rows:        InventoryRows(filtered[start:end], now, start),
		Pagination:  p,
		PageNumbers: shared.PageNumbers(p.Page, p.TotalPages, 1),
	}
	if len(filtered) == 0 {
		resp.Message = "No matching records found."
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type dispenseReportResponse struct {
	Rows        []DispenseRow     `json:"rows"`
	Summary     Summary           `json:"summary"`
	Pagination  shared.Pagination `json:"pagination"`
	PageNumbers []int             `json:"pageNumbers"`
	Message     string            `json:"message,omitempty"`
}

func (h *Handler) handleDispenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := DispenseFilter{
		Period:     q.Get("period"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		Department: q.Get("department"),
		Sort:       q.Get("sort"),
	}
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize <= 0 {
		pageSize = dispensePageSize
	}

	records, err := h.records.List(r.Context())
	if err != nil {
		h.logger.Error("dispense report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	filtered, err := FilterDispenses(records, filter, h.now())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	p := shared.NewPagination(page, pageSize, len(filtered))
	start, end := p.Bounds()
	resp := dispenseReportResponse{
		Rows:        DispenseRows(filtered[start:end], start),
		Summary:     Summarize(filtered),
		Pagination:  p,
		PageNumbers: shared.PageNumbers(p.Page, p.TotalPages, 1),
	}
	if len(filtered) == 0 {
		resp.Message = "No matching records found."
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type summaryResponse struct {
	TotalItems     int           `json:"totalItems"`
	OutOfStock     int           `json:"outOfStock"`
	CriticalStock  int           `json:"criticalStock"`
	Expired        int           `json:"expired"`
	NearExpiry     int           `json:"nearExpiry"`
	Periods        []PeriodTotal `json:"periods"`
	TopDrugs       []RankedTotal `json:"topDrugs"`
	TopDepartments []RankedTotal `json:"topDepartments"`
}

// handleSummary serves the dashboard overview. Item and record loads run
// concurrently since they touch independent tables.
func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	var (
		items   []stock.Item
		records []dispense.Record
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		items, err = h.items.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = h.records.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("summary report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	now := h.now()
	resp := summaryResponse{
		TotalItems:     len(items),
		Periods:        PeriodTotals(records, now),
		TopDrugs:       TopDrugs(records),
		TopDepartments: TopDepartments(records),
	}
	for _, item := range items {
		switch item.Status() {
		case stock.StatusOut:
			resp.OutOfStock++
		case stock.StatusCritical:
			resp.CriticalStock++
		}
		switch item.ExpiryState(now) {
		case stock.ExpiryExpired:
			resp.Expired++
		case stock.ExpiryNear:
			resp.NearExpiry++
		}
	}
	httpx.JSON(w, http.StatusOK, resp)
}
