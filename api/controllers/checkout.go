package controllers

import (
	"net/http"

	"github.com/horologiq/horologiq-backend/api/middleware"
	"github.com/horologiq/horologiq-backend/api/responses"
	"github.com/horologiq/horologiq-backend/api/validators"
	"github.com/horologiq/horologiq-backend/internal/checkout"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/logger"
)

type placeOrderRequest struct {
	CustomerName    string  `json:"customer_name" validate:"required"`
	CustomerEmail   string  `json:"customer_email" validate:"required,email"`
	CustomerPhone   string  `json:"customer_phone"`
	ShippingAddress string  `json:"shipping_address" validate:"required"`
	Notes           *string `json:"notes"`
}

func PlaceOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		token, err := cartToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		placed, err := svc.PlaceOrder(r.Context(), checkout.PlaceOrderInput{
			CartToken:       token,
			IdempotencyKey:  middleware.IdempotencyKeyFromContext(r.Context()),
			CustomerName:    payload.CustomerName,
			CustomerEmail:   payload.CustomerEmail,
			CustomerPhone:   payload.CustomerPhone,
			ShippingAddress: payload.ShippingAddress,
			Notes:           payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, placed)
	}
}
