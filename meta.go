package wsscope

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Meta HTTP-style metadata dictionary, keyed by upper-cased header names with dashes replaced by underscores
type Meta map[string]string

// Meta keys used by scope helpers
const (
	MetaQueryString    = "QUERY_STRING"
	MetaHost           = "HOST"
	MetaXForwardedHost = "X_FORWARDED_HOST"
)

// Get returns value by key, or empty string if missing
func (m Meta) Get(key string) string {
	return m[key]
}

func decodeUTF8(name string, bs []byte) (string, error) {
	if !utf8.Valid(bs) {
		return "", fmt.Errorf("%w: %s is not valid utf-8", ErrInvalidScope, name)
	}

	return string(bs), nil
}

func metaKey(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func (s *Scope) metaSource() interface{} {
	v, err := s.Attr(KeyChannelsScope)
	if err == nil {
		switch t := v.(type) {
		case map[string]interface{}:
			if t != nil {
				return t
			}
		case *Scope:
			if t != nil {
				return t.metaSource()
			}
		}
	}

	return s
}

// BuildMeta rebuilds Meta from channels_scope headers and query string, stores it in the scope under META key and
// returns it. Without channels_scope, scope's own headers and query string are used.
func (s *Scope) BuildMeta() (Meta, error) {
	src := s.metaSource()

	meta := make(Meta)

	headers, _ := lookup(src, KeyHeaders)

	switch t := headers.(type) {
	case nil:
	case [][2][]byte:
		for _, h := range t {
			name, err := decodeUTF8("header name", h[0])
			if err != nil {
				return nil, err
			}

			value, err := decodeUTF8("header "+name, h[1])
			if err != nil {
				return nil, err
			}

			meta[metaKey(name)] = value
		}
	case [][2]string:
		for _, h := range t {
			meta[metaKey(h[0])] = h[1]
		}
	default:
		return nil, fmt.Errorf("%w: %s has type %T", ErrInvalidScope, KeyHeaders, headers)
	}

	query, _ := lookup(src, KeyQueryString)

	switch t := query.(type) {
	case nil:
		meta[MetaQueryString] = ""
	case []byte:
		qs, err := decodeUTF8(KeyQueryString, t)
		if err != nil {
			return nil, err
		}

		meta[MetaQueryString] = qs
	case string:
		meta[MetaQueryString] = t
	default:
		return nil, fmt.Errorf("%w: %s has type %T", ErrInvalidScope, KeyQueryString, query)
	}

	s.SetItem(KeyMeta, meta)

	return meta, nil
}

// Meta returns Meta stored in the scope, building it on first use
func (s *Scope) Meta() (Meta, error) {
	v, err := s.Attr(KeyMeta)
	if err == nil {
		switch t := v.(type) {
		case Meta:
			return t, nil
		case map[string]string:
			return t, nil
		}
	}

	return s.BuildMeta()
}
