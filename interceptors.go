package wsscope

import (
	"context"
	"net/http"
)

type (
	// HandlerHTTPRequest handler, receiving context holding request scope
	HandlerHTTPRequest func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

	// InterceptorHTTPRequest interceptor, called with context already holding request scope
	InterceptorHTTPRequest func(
		ctx context.Context,
		w http.ResponseWriter,
		r *http.Request,
		handler HandlerHTTPRequest,
	) error
)

func interceptorHTTPRequestChain(
	interceptors []InterceptorHTTPRequest,
	idx int,
	handler HandlerHTTPRequest,
) HandlerHTTPRequest {
	for idx < len(interceptors) && interceptors[idx] == nil {
		idx++
	}

	if idx == len(interceptors) {
		return handler
	}

	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return interceptors[idx](ctx, w, r, interceptorHTTPRequestChain(interceptors, idx+1, handler))
	}
}

// InterceptorHTTPRequestChain returns interceptor calling provided interceptors in order, each with context holding
// request scope, then the handler. Nil interceptors are skipped.
func InterceptorHTTPRequestChain(interceptors ...InterceptorHTTPRequest) InterceptorHTTPRequest {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request, handler HandlerHTTPRequest) error {
		return interceptorHTTPRequestChain(interceptors, 0, handler)(ctx, w, r)
	}
}
