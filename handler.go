package wsscope

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

var errHandlerRequired = errors.New("next handler is required")

const disallowedHostLogger = "security.DisallowedHost"

// Handler builds scope for each incoming HTTP request, validates requested host and passes request to the next
// handler with scope available through ContextScope
type Handler interface {
	http.Handler
}

// HandlerOption to configure Handler
type HandlerOption func(config *handlerConfig) error

type handlerConfig struct {
	logger             zerolog.Logger
	interceptors       []InterceptorHTTPRequest
	settings           Settings
	skipHostValidation bool
}

type handlerImpl struct {
	next        http.Handler
	interceptor InterceptorHTTPRequest
	handlerConfig
}

// NewHandler returns new Handler instance, delegating to next handler
func NewHandler(next http.Handler, options ...HandlerOption) (Handler, error) {
	if next == nil {
		return nil, errHandlerRequired
	}

	c := handlerConfig{
		logger: zerolog.Nop(),
	}

	for _, o := range options {
		err := o(&c)
		if err != nil {
			return nil, err
		}
	}

	c.settings = c.settings.Normalize()

	h := &handlerImpl{
		next:          next,
		handlerConfig: c,
	}

	h.interceptor = InterceptorHTTPRequestChain(append([]InterceptorHTTPRequest{writeErrors}, c.interceptors...)...)

	return h, nil
}

// WithSettings option sets settings scopes are created with
func WithSettings(settings Settings) HandlerOption {
	return func(config *handlerConfig) error {
		config.settings = settings

		return nil
	}
}

// WithSettingsFile option reads settings from YAML file
func WithSettingsFile(path string) HandlerOption {
	return func(config *handlerConfig) error {
		settings, err := LoadSettingsFile(path)
		if err != nil {
			return err
		}

		config.settings = settings

		return nil
	}
}

// WithLogger option sets logger, by default nothing is logged
func WithLogger(logger zerolog.Logger) HandlerOption {
	return func(config *handlerConfig) error {
		config.logger = logger

		return nil
	}
}

// WithInterceptors option appends interceptors wrapping host validation and the next handler
func WithInterceptors(interceptors ...InterceptorHTTPRequest) HandlerOption {
	return func(config *handlerConfig) error {
		config.interceptors = append(config.interceptors, interceptors...)

		return nil
	}
}

// WithoutHostValidation option disables host validation, scope is still provided
func WithoutHostValidation() HandlerOption {
	return func(config *handlerConfig) error {
		config.skipHostValidation = true

		return nil
	}
}

func writeErrors(ctx context.Context, w http.ResponseWriter, r *http.Request, handler HandlerHTTPRequest) error {
	err := handler(ctx, w, r)
	if err != nil {
		WriteError(ctx, w, err)
	}

	return err
}

func (h *handlerImpl) handleHTTPRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if !h.skipHostValidation {
		_, err := ContextScope(ctx).Host()
		if err != nil {
			if errors.Is(err, ErrDisallowedHost) {
				h.logger.Warn().
					Str("logger", disallowedHostLogger).
					Str("remote_addr", r.RemoteAddr).
					Str("path", r.URL.Path).
					Err(err).
					Msg("disallowed host")
			}

			return err
		}
	}

	h.next.ServeHTTP(w, r.WithContext(ctx))

	return nil
}

func (h *handlerImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := FromRequest(r, h.settings)

	ctx := WithScope(r.Context(), s)

	_ = h.interceptor(ctx, w, r.WithContext(ctx), h.handleHTTPRequest)
}

// WriteError helper function writing an error to http.ResponseWriter.
// Disallowed host details are only written in debug mode.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	msg := err.Error()

	if errors.Is(err, ErrDisallowedHost) {
		if s := ContextScope(ctx); s == nil || !s.Settings().Debug {
			msg = "Bad Request (400)"
		}
	}

	bs := []byte(msg)

	w.Header().Set("content-length", strconv.Itoa(len(bs)))
	w.WriteHeader(http.StatusBadRequest)

	_, _ = w.Write(bs)
}
