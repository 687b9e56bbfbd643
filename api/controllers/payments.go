package controllers

import (
	"net/http"

	"github.com/vuhoang/marketplace-backend/api/responses"
	"github.com/vuhoang/marketplace-backend/internal/payments"
	pkgerrors "github.com/vuhoang/marketplace-backend/pkg/errors"
	"github.com/vuhoang/marketplace-backend/pkg/logger"
)

// PaymentReturn handles the gateway's browser redirect. Whatever the
// verification outcome, a successful invocation ends in a 302 to the frontend
// landing page; only lookup and database failures surface as errors.
func PaymentReturn(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		params := make(map[string]string, len(r.URL.Query()))
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		result, err := svc.ProcessReturn(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		http.Redirect(w, r, result.RedirectURL, http.StatusFound)
	}
}
