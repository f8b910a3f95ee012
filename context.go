package wsscope

import (
	"context"
)

type contextKeyScopeT struct{}

// ContextKeyScope used to store request *Scope
var ContextKeyScope = contextKeyScopeT{}

// WithScope returns context holding provided scope
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, ContextKeyScope, s)
}

// ContextScope returns scope stored in a context, or nil if none present
func ContextScope(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}

	v := ctx.Value(ContextKeyScope)
	if v == nil {
		return nil
	}

	s, ok := v.(*Scope)
	if !ok {
		return nil
	}

	return s
}
