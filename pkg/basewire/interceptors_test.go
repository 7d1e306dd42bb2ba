package basewire_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basewire/basewire-go/pkg/basewire"
)

func TestInterceptorChain_Order(t *testing.T) {
	t.Parallel()

	chain := basewire.NewInterceptorChain()

	var order []string

	chain.AddRequestInterceptor(func(context.Context, *basewire.RequestInfo) error {
		order = append(order, "first")

		return nil
	})
	chain.AddRequestInterceptor(func(context.Context, *basewire.RequestInfo) error {
		order = append(order, "second")

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &basewire.RequestInfo{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestInterceptorChain_AbortsOnError(t *testing.T) {
	t.Parallel()

	errNope := errors.New("nope")

	chain := basewire.NewInterceptorChain()
	chain.AddRequestInterceptor(func(context.Context, *basewire.RequestInfo) error {
		return errNope
	})

	reached := false

	chain.AddRequestInterceptor(func(context.Context, *basewire.RequestInfo) error {
		reached = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &basewire.RequestInfo{})
	require.ErrorIs(t, err, errNope)
	assert.False(t, reached)
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := basewire.HeaderInterceptor(map[string]string{
		"X-Custom": "value",
	})

	req := &basewire.RequestInfo{Method: "GET", Path: "/api/health"}

	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "value", req.Headers.Get("X-Custom"))

	// Existing headers survive.
	req.Headers.Set("X-Other", "kept")
	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "kept", req.Headers.Get("X-Other"))
}

func TestMetricsInterceptors(t *testing.T) {
	t.Parallel()

	collector := basewire.NewMetricsCollector()
	request := basewire.MetricsRequestInterceptor(collector)
	response := basewire.MetricsResponseInterceptor(collector)

	ctx := context.Background()

	req := &basewire.RequestInfo{Method: "GET", Path: "/api/collections/posts/records"}

	require.NoError(t, request(ctx, req))
	require.NoError(t, response(ctx, req, &basewire.ResponseInfo{StatusCode: http.StatusOK}))
	require.NoError(t, request(ctx, req))
	require.NoError(t, response(ctx, req, &basewire.ResponseInfo{StatusCode: http.StatusNotFound}))

	metrics := collector.GetMetrics("GET /api/collections/posts/records")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
	assert.False(t, metrics.LastRequestTime.IsZero())

	assert.Nil(t, collector.GetMetrics("GET /unknown"))
}

func TestMetricsInterceptors_Concurrent(t *testing.T) {
	t.Parallel()

	collector := basewire.NewMetricsCollector()
	request := basewire.MetricsRequestInterceptor(collector)
	response := basewire.MetricsResponseInterceptor(collector)

	const (
		goroutines = 8
		perWorker  = 25
	)

	var wg sync.WaitGroup

	for range goroutines {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ctx := context.Background()

			for range perWorker {
				req := &basewire.RequestInfo{Method: "GET", Path: "/api/health"}

				assert.NoError(t, request(ctx, req))
				assert.NoError(t, response(ctx, req, &basewire.ResponseInfo{StatusCode: http.StatusOK}))
			}
		}()
	}

	wg.Wait()

	metrics := collector.GetMetrics("GET /api/health")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(goroutines*perWorker), metrics.TotalRequests)
	assert.Equal(t, int64(0), metrics.TotalErrors)
}

func TestRateLimitInterceptor_AllowsBurst(t *testing.T) {
	t.Parallel()

	interceptor := basewire.RateLimitInterceptor(5)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// The initial bucket covers a full burst without blocking.
	for range 5 {
		require.NoError(t, interceptor(ctx, &basewire.RequestInfo{}))
	}
}

func TestRateLimitInterceptor_CancellationWhileBlocked(t *testing.T) {
	t.Parallel()

	interceptor := basewire.RateLimitInterceptor(1)

	ctx := context.Background()
	require.NoError(t, interceptor(ctx, &basewire.RequestInfo{}))

	// The bucket is drained; a cancelled context unblocks the waiter.
	cancelled, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	err := interceptor(cancelled, &basewire.RequestInfo{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimitInterceptor_Refills(t *testing.T) {
	t.Parallel()

	interceptor := basewire.RateLimitInterceptor(100)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Drain the burst, then keep going; each extra token arrives within
	// one refill interval.
	for range 120 {
		require.NoError(t, interceptor(ctx, &basewire.RequestInfo{}))
	}
}
