package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	ok := SubjectPinger("postgres", func(context.Context) error { return nil })
	failed := SubjectPinger("redis", func(context.Context) error { return errors.New("connection refused") })

	tt := []struct {
		name    string
		pingers []Pinger
		code    int
		body    string
	}{
		{
			name:    "healthy",
			pingers: []Pinger{ok},
			code:    http.StatusOK,
			body:    `{"version":"dev","commit":"undefined"}`,
		},
		{
			name:    "unhealthy",
			pingers: []Pinger{ok, failed},
			code:    http.StatusServiceUnavailable,
			body:    `{"version":"dev","commit":"undefined","errors":{"redis":"connection refused"}}`,
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Handler(time.Second, tc.pingers...)(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestHandler_Timeout(t *testing.T) {
	slow := SubjectPinger("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	w := httptest.NewRecorder()
	Handler(10*time.Millisecond, slow)(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, "dev-undefined", GetVersion())
}
