package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/josefk31/kafka/common"
	log "github.com/josefk31/kafka/logger"
)

type (
	Labels        = prometheus.Labels
	Counter       = prometheus.Counter
	CounterVec    = prometheus.CounterVec
	CounterOpts   = prometheus.CounterOpts
	Gauge         = prometheus.Gauge
	GaugeVec      = prometheus.GaugeVec
	GaugeOpts     = prometheus.GaugeOpts
	HistogramOpts = prometheus.HistogramOpts
	HistogramVec  = prometheus.HistogramVec
	Observer      = prometheus.Observer
)

var (
	RequestsTotal = promauto.NewCounterVec(CounterOpts{
		Name: "kafka_requests_total",
		Help: "Requests handled, by api key name.",
	}, []string{"api"})

	RequestErrorsTotal = promauto.NewCounterVec(CounterOpts{
		Name: "kafka_request_errors_total",
		Help: "Requests that failed before a normal response could be produced, by api key name.",
	}, []string{"api"})

	RequestLocalTimeSeconds = promauto.NewHistogramVec(HistogramOpts{
		Name:    "kafka_request_local_time_seconds",
		Help:    "Time from request arrival to completion of its local work, by api key name.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	}, []string{"api"})

	ThrottledRequestsTotal = promauto.NewCounterVec(CounterOpts{
		Name: "kafka_throttled_requests_total",
		Help: "Requests delayed by a quota, by quota dimension.",
	}, []string{"dimension"})

	FetchSessions = promauto.NewGauge(GaugeOpts{
		Name: "kafka_fetch_sessions",
		Help: "Incremental fetch sessions currently tracked.",
	})

	ShareSessions = promauto.NewGauge(GaugeOpts{
		Name: "kafka_share_sessions",
		Help: "Share sessions currently tracked.",
	})
)

type Conf struct {
	Enabled     bool   `help:"Enable the prometheus metrics endpoint" default:"false"`
	MetricsBind string `help:"Bind address for the prometheus metrics endpoint" default:"localhost:9102"`
}

func NewConf() Conf {
	return Conf{MetricsBind: "localhost:9102"}
}

// Server exposes the prometheus registry over http.
type Server struct {
	cfg        Conf
	httpServer *http.Server
}

type metricsHandler struct{}

func (m *metricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			DisableCompression: true,
		}),
	).ServeHTTP(w, r)
}

func NewServer(cfg Conf) *Server {
	if !cfg.Enabled {
		return &Server{cfg: cfg}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", &metricsHandler{})
	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:    cfg.MetricsBind,
			Handler: mux,
		},
	}
}

func (s *Server) Start() {
	if s.httpServer == nil {
		return
	}
	common.Go(func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics http server failed to listen %v", err)
		}
	})
}

func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Close()
}
