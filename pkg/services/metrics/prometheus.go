package metrics

import (
	"net/http"

	"github.com/localnet-dev/localnet/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// PrometheusService https://prometheus.io/docs/guides/go-application.
type PrometheusService Service

// NewPrometheusService creates a new service for gathering prometheus
// metrics.
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	if log == nil {
		return nil
	}
	return NewService("Prometheus", &http.Server{
		Addr:    cfg.GetAddress(),
		Handler: promhttp.Handler(),
	}, cfg, log)
}
