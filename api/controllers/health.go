package controllers

import (
	"net/http"

	"github.com/vuhoang/marketplace-backend/api/responses"
	"github.com/vuhoang/marketplace-backend/pkg/config"
	pkgerrors "github.com/vuhoang/marketplace-backend/pkg/errors"
	"github.com/vuhoang/marketplace-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Marketplace-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady runs each named dependency check and fails the probe on the
// first error.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Marketplace-Env", cfg.App.Env)
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
