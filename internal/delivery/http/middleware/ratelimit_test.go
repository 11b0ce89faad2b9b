package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Limit(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	t.Run("burst allows then throttles", func(t *testing.T) {
		rl := NewRateLimiter(1, 2)
		handler := rl.Limit(ok)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/events/x/bookings", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			rr := httptest.NewRecorder()
			handler(rr, req)
			codes = append(codes, rr.Code)
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("clients have separate buckets", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		handler := rl.Limit(ok)

		first := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		first.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler(rr, first)
		require.Equal(t, http.StatusOK, rr.Code)

		blocked := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		blocked.RemoteAddr = "10.0.0.1:9999"
		rr = httptest.NewRecorder()
		handler(rr, blocked)
		require.Equal(t, http.StatusTooManyRequests, rr.Code, "same IP, different port shares the bucket")

		other := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		other.RemoteAddr = "10.0.0.2:1234"
		rr = httptest.NewRecorder()
		handler(rr, other)
		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("throttled response uses the error envelope", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		handler := rl.Limit(ok)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
			req.RemoteAddr = "10.0.0.3:1234"
			rr := httptest.NewRecorder()
			handler(rr, req)
			if i == 1 {
				require.Equal(t, http.StatusTooManyRequests, rr.Code)
				assert.Contains(t, rr.Body.String(), `"code":"rate_limited"`)
			}
		}
	})
}
