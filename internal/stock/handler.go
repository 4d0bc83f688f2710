package stock

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pharmledger/pharmledger/internal/platform/httpx"
	"github.com/pharmledger/pharmledger/internal/shared"
)

var validate = validator.New()

// Handler wires HTTP endpoints for stock item mutations.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs stock handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleEdit)
	r.Post("/{id}/increment", h.handleIncrement)
	r.Delete("/{id}", h.handleDelete)
}

type itemRequest struct {
	Name           string `json:"name" validate:"required"`
	Classification string `json:"classification"`
	SubClass       string `json:"subClass"`
	Expiry         string `json:"expiry"`
	PackSize       string `json:"packSize"`
	Unit           string `json:"unit"`
	Quantity       int64  `json:"quantity" validate:"gte=0"`
	CriticalLevel  int64  `json:"criticalLevel" validate:"gte=0"`
	AuthCode       string `json:"authCode"`
}

func (req itemRequest) input() ItemInput {
	return ItemInput{
		Name:           req.Name,
		Classification: req.Classification,
		SubClass:       req.SubClass,
		Expiry:         req.Expiry,
		PackSize:       req.PackSize,
		Unit:           req.Unit,
		Quantity:       req.Quantity,
		CriticalLevel:  req.CriticalLevel,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		h.logger.Error("create stock item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("stock item created", slog.Int64("id", item.ID), slog.String("name", item.Name))
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req itemRequest
	if err := decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.Edit(r.Context(), id, req.input(), req.AuthCode)
	if err != nil {
		h.logger.Warn("edit stock item", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

type incrementRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	AuthCode string `json:"authCode"`
}

func (h *Handler) handleIncrement(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req incrementRequest
	if err := decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.Increment(r.Context(), id, req.Amount, req.AuthCode)
	if err != nil {
		h.logger.Warn("increment stock item", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("stock incremented", slog.Int64("id", id), slog.Int64("amount", req.Amount))
	httpx.JSON(w, http.StatusOK, item)
}

type authRequest struct {
	AuthCode string `json:"authCode"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req authRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("stock: decode request: %w", shared.ErrValidation))
		return
	}
	if err := h.service.Delete(r.Context(), id, req.AuthCode); err != nil {
		h.logger.Warn("delete stock item", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("stock item deleted", slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("stock: invalid item id: %w", shared.ErrValidation)
	}
	return id, nil
}

func decodeValid(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return fmt.Errorf("stock: decode request: %w", shared.ErrValidation)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("stock: %v: %w", err, shared.ErrValidation)
	}
	return nil
}
