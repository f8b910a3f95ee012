package wsscope

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	upperhex = "0123456789ABCDEF"

	// characters kept unescaped in paths, in addition to letters, digits and "_.-~"
	pathSafe = "/:@&+$,!*'()"

	// characters kept unescaped when converting IRI to URI, in addition to letters, digits and "_.-~"
	iriSafe = "/#%[]=:;$&()+,!?*@'"
)

func quote(s, safe string) string {
	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		case c == '_', c == '.', c == '-', c == '~':
			b.WriteByte(c)
		case strings.IndexByte(safe, c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}

	return b.String()
}

// EscapeURIPath percent-encodes unsafe characters of the path, keeping path delimiters intact
func EscapeURIPath(path string) string {
	return quote(path, pathSafe)
}

// IRIToURI converts internationalized resource identifier into URI, percent-encoding non-ASCII and unsafe characters
// while keeping reserved characters and existing escapes intact
func IRIToURI(iri string) string {
	return quote(iri, iriSafe)
}

type splitLocation struct {
	scheme string
	host   string
	path   string
}

func isSchemeChar(c byte, first bool) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	case first:
		return false
	case '0' <= c && c <= '9', c == '+', c == '-', c == '.':
		return true
	}

	return false
}

func split(location string) (res splitLocation) {
	rest := location

	if idx := strings.IndexByte(rest, ':'); idx > 0 {
		valid := true

		for i := 0; i < idx; i++ {
			if !isSchemeChar(rest[i], i == 0) {
				valid = false

				break
			}
		}

		if valid {
			res.scheme, rest = strings.ToLower(rest[:idx]), rest[idx+1:]
		}
	}

	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]

		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			end = len(rest)
		}

		res.host, rest = rest[:end], rest[end:]
	}

	if end := strings.IndexAny(rest, "?#"); end >= 0 {
		rest = rest[:end]
	}

	res.path = rest

	return
}

// FullPath returns escaped request path with query string, if any.
// If forceAppendSlash is true, path is guaranteed to end with a slash.
func (s *Scope) FullPath(forceAppendSlash bool) (string, error) {
	path, err := s.Path()
	if err != nil {
		return "", err
	}

	meta, err := s.Meta()
	if err != nil {
		return "", err
	}

	var b strings.Builder

	b.WriteString(EscapeURIPath(path))

	if forceAppendSlash && !strings.HasSuffix(path, "/") {
		b.WriteByte('/')
	}

	if qs := meta[MetaQueryString]; qs != "" {
		b.WriteByte('?')
		b.WriteString(IRIToURI(qs))
	}

	return b.String(), nil
}

func (s *Scope) currentSchemeHost() (string, error) {
	s.mutex.RLock()

	res := s.schemeHost

	s.mutex.RUnlock()

	if res != "" {
		return res, nil
	}

	host, err := s.Host()
	if err != nil {
		return "", err
	}

	scheme := "http"

	if s.IsSecure() {
		scheme = "https"
	}

	res = scheme + "://" + host

	s.mutex.Lock()

	s.schemeHost = res

	s.mutex.Unlock()

	return res, nil
}

// AbsoluteURI returns absolute URI of the current request
func (s *Scope) AbsoluteURI() (string, error) {
	fullpath, err := s.FullPath(false)
	if err != nil {
		return "", err
	}

	// path starting with "//" must not be mistaken for a host
	return s.BuildAbsoluteURI("//" + fullpath)
}

// BuildAbsoluteURI returns absolute URI for provided location.
// Absolute locations are converted into URI as is, relative and scheme-relative locations are resolved against
// current request scheme, host and path.
func (s *Scope) BuildAbsoluteURI(location string) (string, error) {
	bits := split(location)

	if bits.scheme != "" && bits.host != "" {
		return IRIToURI(location), nil
	}

	schemeHost, err := s.currentSchemeHost()
	if err != nil {
		return "", err
	}

	// same-scheme location without host is relative to the current request
	if bits.scheme != "" && bits.host == "" && strings.HasPrefix(schemeHost, bits.scheme+"://") {
		location = location[len(bits.scheme)+1:]
		bits.scheme = ""
	}

	if strings.HasPrefix(bits.path, "/") &&
		bits.scheme == "" &&
		bits.host == "" &&
		!strings.Contains(bits.path, "/./") &&
		!strings.Contains(bits.path, "/../") {
		return IRIToURI(schemeHost + strings.TrimPrefix(location, "//")), nil
	}

	path, err := s.Path()
	if err != nil {
		return "", err
	}

	base, err := url.Parse(schemeHost + EscapeURIPath(path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidScope, err)
	}

	ref, err := url.Parse(IRIToURI(location))
	if err != nil {
		return "", fmt.Errorf("parse location: %w", err)
	}

	return IRIToURI(base.ResolveReference(ref).String()), nil
}
