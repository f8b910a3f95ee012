// Package graphqlgo provides graphql-go resolver helpers exposing request scope
package graphqlgo

import (
	"errors"

	"github.com/eientei/wsscope"
	"github.com/graphql-go/graphql"
)

// ErrNoScope returned when resolver context does not hold request scope
var ErrNoScope = errors.New("no scope in resolver context")

// Scope returns request scope from resolver context
func Scope(p graphql.ResolveParams) (*wsscope.Scope, error) {
	s := wsscope.ContextScope(p.Context)
	if s == nil {
		return nil, ErrNoScope
	}

	return s, nil
}

// AbsoluteURIField returns field resolving absolute URI of the current request, or of provided location argument
func AbsoluteURIField() *graphql.Field {
	return &graphql.Field{
		Description: "Absolute URI of the current request or provided location",
		Type:        graphql.NewNonNull(graphql.String),
		Args: graphql.FieldConfigArgument{
			"location": &graphql.ArgumentConfig{
				Type: graphql.String,
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			s, err := Scope(p)
			if err != nil {
				return nil, err
			}

			location, ok := p.Args["location"].(string)
			if !ok {
				return s.AbsoluteURI()
			}

			return s.BuildAbsoluteURI(location)
		},
	}
}

// HostField returns field resolving validated host of the current request
func HostField() *graphql.Field {
	return &graphql.Field{
		Description: "Host of the current request",
		Type:        graphql.NewNonNull(graphql.String),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			s, err := Scope(p)
			if err != nil {
				return nil, err
			}

			return s.Host()
		},
	}
}

// FullPathField returns field resolving full path of the current request
func FullPathField() *graphql.Field {
	return &graphql.Field{
		Description: "Path of the current request, including query string",
		Type:        graphql.NewNonNull(graphql.String),
		Args: graphql.FieldConfigArgument{
			"forceAppendSlash": &graphql.ArgumentConfig{
				Type:         graphql.Boolean,
				DefaultValue: false,
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			s, err := Scope(p)
			if err != nil {
				return nil, err
			}

			force, _ := p.Args["forceAppendSlash"].(bool)

			return s.FullPath(force)
		},
	}
}
