package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tablemaster/tablemaster/pkg/application"
)

const DefaultPath = "/debug/prometheus"

// Registry holds the tablemaster collectors: runtime and process metrics plus
// whatever the modules register through Factory.
var Registry = newRegistry()

// Factory creates collectors registered on Registry.
var Factory = promauto.With(Registry)

func newRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

type PrometheusController struct {
	path     string
	registry *prometheus.Registry
}

// NewPrometheusController serves registry at path. A nil registry serves Registry.
func NewPrometheusController(path string, registry *prometheus.Registry) application.Controller {
	if path == "" {
		path = DefaultPath
	}
	if registry == nil {
		registry = Registry
	}
	return &PrometheusController{path: path, registry: registry}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	handler := promhttp.InstrumentMetricHandler(
		c.registry,
		promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry}),
	)
	r.Handle(c.path, handler).Methods(http.MethodGet)
}
