package controllers

import (
	"net/http"
	"time"

	"github.com/horologiq/horologiq-backend/api/responses"
	"github.com/horologiq/horologiq-backend/internal/finance"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/logger"
)

const financeDateLayout = "2006-01-02"

func dateQuery(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.Parse(financeDateLayout, raw)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, name+" must be formatted YYYY-MM-DD")
	}
	return parsed, nil
}

// FinanceOverview defaults to the trailing 30 days when no range is given.
func FinanceOverview(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "finance service unavailable"))
			return
		}

		now := time.Now().UTC()
		to, err := dateQuery(r, "to", now.Truncate(24*time.Hour))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := dateQuery(r, "from", to.AddDate(0, 0, -29))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dashboard, err := svc.Overview(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}
