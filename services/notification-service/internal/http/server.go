package httpx

import (
	"net/http"

	sharedmetrics "gamezone/shared/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(sharedmetrics.Middleware("notification-service"))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
