package httpx

import (
	"errors"
	"net/http"

	"github.com/pharmledger/pharmledger/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807. Each
// failure aborts only its own action; validation and authorization problems
// carry the wrapped detail so input can be corrected and retried.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInsufficientStock):
		Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "authorization code incorrect")
	case errors.Is(err, shared.ErrSchema):
		Problem(w, http.StatusBadRequest, "Schema Mismatch", err.Error())
	case errors.Is(err, shared.ErrFormat):
		Problem(w, http.StatusBadRequest, "Invalid Format", err.Error())
	case errors.Is(err, shared.ErrStorage):
		Problem(w, http.StatusInternalServerError, "Storage Failure", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
