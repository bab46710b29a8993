package handler

import (
	"errors"
	"net/http"

	"vendmatic-rest-api/internal/model"
	"vendmatic-rest-api/internal/service"
	"vendmatic-rest-api/pkg/apierror"
	"vendmatic-rest-api/pkg/response"
)

// writeServiceError maps domain errors onto the API error taxonomy.
// Validation failures are 400s, missing resources 404s, and failures that
// depend on concurrent machine state (stock, capacity) 409s. Anything else
// is a store failure and surfaces as 500 unmodified.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrSlotNotFound):
		response.Error(w, apierror.NotFound("slot not found"))
	case errors.Is(err, model.ErrItemNotFound):
		response.Error(w, apierror.NotFound("slot is not stocked"))
	case errors.Is(err, service.ErrInsufficientPayment):
		response.Error(w, apierror.ValidationError("INSUFFICIENT_PAYMENT", err.Error()))
	case errors.Is(err, service.ErrInvalidDenomination):
		response.Error(w, apierror.ValidationError("INVALID_DENOMINATION", err.Error()))
	case errors.Is(err, service.ErrCannotMakeChange):
		response.Error(w, apierror.ValidationError("CANNOT_MAKE_CHANGE", err.Error()))
	case errors.Is(err, service.ErrAmountTooLarge):
		response.Error(w, apierror.ValidationError("AMOUNT_TOO_LARGE", err.Error()))
	case errors.Is(err, service.ErrInvalidQuantity):
		response.Error(w, apierror.ValidationError("INVALID_QUANTITY", err.Error()))
	case errors.Is(err, service.ErrInvalidPrice):
		response.Error(w, apierror.ValidationError("INVALID_PRICE", err.Error()))
	case errors.Is(err, service.ErrInvalidCapacity):
		response.Error(w, apierror.ValidationError("INVALID_CAPACITY", err.Error()))
	case errors.Is(err, model.ErrOutOfStock):
		response.Error(w, apierror.Conflict("OUT_OF_STOCK", err.Error()))
	case errors.Is(err, model.ErrCapacityExceeded):
		response.Error(w, apierror.Conflict("CAPACITY_EXCEEDED", err.Error()))
	case errors.Is(err, model.ErrSlotNotEmpty):
		response.Error(w, apierror.Conflict("SLOT_NOT_EMPTY", err.Error()))
	default:
		response.Error(w, err)
	}
}
