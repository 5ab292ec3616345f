// Package server Feedrank
//
// The Feedrank serves ranked feeds of feedback posts: personalized home feed, recommendations and trending.
//
//     Schemes: https
//     BasePath: /v1
//     Version: 1.0.0
//
//     Produces:
//     - application/json
//     Consumes:
//     - application/json
//
// swagger:meta
package server

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	"github.com/feedhub/feedrank/internal/metrics"
	mm "github.com/feedhub/feedrank/internal/middleware"
	"github.com/feedhub/feedrank/internal/service"
)

//go:generate swagger generate spec -t swagger -m -c . -o ../../static/swagger.json

// maxBodySize fits a rank request of a few thousand posts.
const maxBodySize = 1 << 20

type server struct {
	s service.Service
}

// SetupRouter setups handlers to chi router.
func SetupRouter(s service.Service, cache mm.Storage, cacheTTL time.Duration, r chi.Router, timeout time.Duration) {
	r.Use(
		middleware.RequestID,
		loggerMiddleware,
		middleware.StripSlashes,
		cors.AllowAll().Handler,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		bodyLimiterMiddleware(maxBodySize),
		metrics.Middleware,
	)

	srv := server{
		s: s,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/feed", srv.getFeed)
		r.Get("/recommendations", srv.getRecommendations)
		r.Get("/trending", mm.Cached(cache, cacheTTL, srv.getTrending))
		r.Get("/companies/trending", mm.Cached(cache, cacheTTL, srv.getCompanyTrending))
		r.Get("/posts/{id}/score", srv.getPostScore)
		r.Get("/variant", srv.getVariant)
		r.Post("/rank", srv.rank)
	})
}
