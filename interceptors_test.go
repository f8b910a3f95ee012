package wsscope

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterceptorHTTPRequestChain(t *testing.T) {
	var calls []string

	target := errors.New("123")

	record := func(name string) InterceptorHTTPRequest {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request, handler HandlerHTTPRequest) error {
			calls = append(calls, name)

			return handler(ctx, w, r)
		}
	}

	chain := InterceptorHTTPRequestChain(record("a"), nil, record("b"))

	err := chain(
		context.Background(),
		httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/", nil),
		func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			calls = append(calls, "handler")

			return target
		},
	)

	assert.Equal(t, target, err)
	assert.Equal(t, []string{"a", "b", "handler"}, calls)
}

func TestInterceptorHTTPRequestChainEmpty(t *testing.T) {
	called := false

	err := InterceptorHTTPRequestChain()(
		context.Background(),
		httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/", nil),
		func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			called = true

			return nil
		},
	)

	assert.NoError(t, err)
	assert.True(t, called)
}
