// Package otelwsscope provides opentelemetry instrumentation for wsscope
package otelwsscope

import (
	"context"
	"net/http"
	"strconv"

	"github.com/eientei/wsscope"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/eientei/wsscope/compat/otelwsscope"
	instrumentationVersion = "1.0.0"
)

// Option provides customizations for request interceptor
type Option interface {
	apply(*config)
}

// NewHTTPRequestInterceptor returns new otel-span reporting wsscope request interceptor
func NewHTTPRequestInterceptor(options ...Option) wsscope.InterceptorHTTPRequest {
	var c config

	defaultOptions := []Option{
		WithSpanNameResolver(DefaultSpanNameResolver),
		WithSpanAttributesResolver(DefaultSpanAttributesResolver),
		WithStartSpanOptions(trace.WithSpanKind(trace.SpanKindServer)),
	}

	for _, o := range append(defaultOptions, options...) {
		o.apply(&c)
	}

	return func(
		ctx context.Context,
		w http.ResponseWriter,
		r *http.Request,
		handler wsscope.HandlerHTTPRequest,
	) error {
		tracer := c.tracer

		if tracer == nil {
			if c.tracerProvider != nil {
				tracer = newTracer(c.tracerProvider)
			} else if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
				tracer = newTracer(span.TracerProvider())
			} else {
				tracer = newTracer(otel.GetTracerProvider())
			}
		}

		s := wsscope.ContextScope(ctx)
		if s == nil {
			s = wsscope.FromRequest(r, wsscope.Settings{})
		}

		opts := append(
			[]trace.SpanStartOption{trace.WithAttributes(c.attributesResolver(ctx, s)...)},
			c.startSpanOptions...,
		)

		ctx, span := tracer.Start(ctx, c.nameResolver(ctx, s), opts...)

		err := handler(ctx, w, r.WithContext(ctx))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		span.End()

		return err
	}
}

// SpanNameResolver determines span name from request scope
type SpanNameResolver func(ctx context.Context, s *wsscope.Scope) string

// SpanAttributesResolver determines span attributes from request scope
type SpanAttributesResolver func(ctx context.Context, s *wsscope.Scope) []attribute.KeyValue

// WithTracer provides predefined tracer instance
func WithTracer(tracer trace.Tracer) Option {
	return optionFunc(func(c *config) {
		c.tracer = tracer
	})
}

// WithTracerProvider sets predefined tracer provider instance
func WithTracerProvider(tracerProvider trace.TracerProvider) Option {
	return optionFunc(func(c *config) {
		c.tracerProvider = tracerProvider
	})
}

// WithStartSpanOptions provides extra starting span options
func WithStartSpanOptions(spanOptions ...trace.SpanStartOption) Option {
	return optionFunc(func(c *config) {
		c.startSpanOptions = spanOptions
	})
}

// WithSpanNameResolver provides custom name resolver
func WithSpanNameResolver(resolver SpanNameResolver) Option {
	return optionFunc(func(c *config) {
		c.nameResolver = resolver
	})
}

// WithSpanAttributesResolver provides custom attribute resolver
func WithSpanAttributesResolver(resolver SpanAttributesResolver) Option {
	return optionFunc(func(c *config) {
		c.attributesResolver = resolver
	})
}

// DefaultSpanNameResolver default span name resolver function
func DefaultSpanNameResolver(_ context.Context, s *wsscope.Scope) string {
	typ := s.Type()
	if typ == "" {
		typ = wsscope.TypeHTTP
	}

	return "wsscope." + typ
}

// DefaultSpanAttributesResolver default span attributes resolver function.
// Full URL is only reported for hosts passing validation.
func DefaultSpanAttributesResolver(_ context.Context, s *wsscope.Scope) (attrs []attribute.KeyValue) {
	if v, err := s.Attr(wsscope.KeyScheme); err == nil {
		if scheme, ok := v.(string); ok && scheme != "" {
			attrs = append(attrs, semconv.URLScheme(scheme))
		}
	}

	if path, err := s.Path(); err == nil {
		attrs = append(attrs, semconv.URLPath(path))
	}

	meta, err := s.Meta()
	if err != nil {
		return
	}

	if qs := meta.Get(wsscope.MetaQueryString); qs != "" {
		attrs = append(attrs, semconv.URLQuery(qs))
	}

	if raw, err := s.RawHost(); err == nil {
		domain, port := wsscope.SplitDomainPort(raw)

		if domain != "" {
			attrs = append(attrs, semconv.ServerAddress(domain))
		}

		if p, err := strconv.Atoi(port); err == nil {
			attrs = append(attrs, semconv.ServerPort(p))
		}
	}

	if uri, err := s.AbsoluteURI(); err == nil {
		attrs = append(attrs, semconv.URLFull(uri))
	}

	return
}

type config struct {
	nameResolver       SpanNameResolver
	attributesResolver SpanAttributesResolver
	tracer             trace.Tracer
	tracerProvider     trace.TracerProvider
	startSpanOptions   []trace.SpanStartOption
}

type optionFunc func(c *config)

func (o optionFunc) apply(c *config) {
	o(c)
}

func newTracer(provider trace.TracerProvider) trace.Tracer {
	return provider.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
}
