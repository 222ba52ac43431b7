package httpx

import (
	"errors"
	"net/http"

	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var priceErr *shared.PriceNotFoundError
	var partialErr *shared.PartialNotFoundError

	switch {
	case errors.As(err, &priceErr):
		Problem(w, http.StatusBadRequest, "Price Not Found", priceErr.Error())
	case errors.As(err, &partialErr):
		Problem(w, http.StatusNotFound, "Partial Not Found", partialErr.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrSequenceConflict):
		Problem(w, http.StatusConflict, "Sequence Conflict", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
