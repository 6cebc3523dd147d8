package controllers

import (
	"net/http"

	"github.com/horologiq/horologiq-backend/api/responses"
	"github.com/horologiq/horologiq-backend/internal/catalogsync"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/logger"
)

// ProductFeedPreview renders the feed rows a product would publish, including
// the combinations that would be skipped and why.
func ProductFeedPreview(svc catalogsync.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog sync service unavailable"))
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.ProductFeed(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
