// Package metrics contains prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// nolint:gochecknoglobals
var (
	// RankingDuration ...
	RankingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feedrank_ranking_duration_seconds",
		Help:    "Duration of ranking operations",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation"})

	// RankedPosts ...
	RankedPosts = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feedrank_ranked_posts",
		Help:    "Count of candidate posts per ranking operation",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"operation"})

	// InvalidPosts ...
	InvalidPosts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedrank_invalid_posts_total",
		Help: "Count of ranking requests rejected because of invalid post data",
	}, []string{"operation"})

	// VariantAssignments ...
	VariantAssignments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedrank_variant_assignments_total",
		Help: "Count of feeds built per ranking variant",
	}, []string{"variant"})

	// HTTPResponses ...
	HTTPResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedrank_http_responses_total",
		Help: "Count of HTTP responses by route and status",
	}, []string{"route", "status"})
)

// MustRegister registers all collectors.
func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		RankingDuration,
		RankedPosts,
		InvalidPosts,
		VariantAssignments,
		HTTPResponses,
	)
}

// ObserveRanking records duration and size of a ranking operation.
func ObserveRanking(operation string, started time.Time, posts int) {
	RankingDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	RankedPosts.WithLabelValues(operation).Observe(float64(posts))
}

// Middleware counts responses by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPResponses.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
