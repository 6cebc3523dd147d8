package controllers

import (
	"net/http"

	"github.com/horologiq/horologiq-backend/api/responses"
	"github.com/horologiq/horologiq-backend/api/validators"
	"github.com/horologiq/horologiq-backend/internal/settings"
	"github.com/horologiq/horologiq-backend/pkg/enums"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/logger"
)

type updateSettingsRequest struct {
	StoreName         *string `json:"store_name"`
	DefaultBrand      *string `json:"default_brand"`
	Currency          *string `json:"currency"`
	ContactEmail      *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone      *string `json:"contact_phone"`
	CatalogSyncOn     *bool   `json:"catalog_sync_on"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
}

func (req updateSettingsRequest) toInput() (settings.UpdateSettingsInput, error) {
	input := settings.UpdateSettingsInput{
		StoreName:         req.StoreName,
		DefaultBrand:      req.DefaultBrand,
		ContactEmail:      req.ContactEmail,
		ContactPhone:      req.ContactPhone,
		CatalogSyncOn:     req.CatalogSyncOn,
		LowStockThreshold: req.LowStockThreshold,
	}
	if req.Currency != nil {
		code, err := enums.ParseCurrencyCode(*req.Currency)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
		input.Currency = &code
	}
	return input, nil
}

func GetSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		current, err := svc.Current(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}

func UpdateSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
