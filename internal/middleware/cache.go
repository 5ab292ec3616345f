// Package middleware ...
package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=./mock/cache.go -package=mock -source=cache.go

var log = logrus.WithField("layer", "api").WithField("package", "middleware")

// Storage ...
type Storage interface {
	// Get returns nil content on miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, content []byte, ttl time.Duration) error
}

// Cached caches successful JSON responses by request URI.
// Storage failures are logged and the request is served by handler.
func Cached(storage Storage, ttl time.Duration, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := storage.Get(r.Context(), r.RequestURI)
		if err != nil {
			log.WithError(err).WithField("key", r.RequestURI).Warn("failed to get cached response")
		}

		if content != nil {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(content)
			return
		}

		c := httptest.NewRecorder()
		handler(c, r)

		for k, v := range c.Header() {
			w.Header()[k] = v
		}

		w.WriteHeader(c.Code)
		content = c.Body.Bytes()

		if c.Code == http.StatusOK {
			if err := storage.Set(r.Context(), r.RequestURI, content, ttl); err != nil {
				log.WithError(err).WithField("key", r.RequestURI).Warn("failed to cache response")
			}
		}

		_, _ = w.Write(content)
	}
}
