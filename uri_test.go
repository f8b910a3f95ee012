package wsscope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testURIScope(settings Settings, host, path, query string) *Scope {
	return New(map[string]interface{}{
		KeyChannelsScope: map[string]interface{}{
			KeyPath:        path,
			KeyQueryString: []byte(query),
			KeyHeaders:     testHeaders([2]string{"host", host}),
		},
	}, settings)
}

func TestEscapeURIPath(t *testing.T) {
	assert.Equal(t, "/hello%20world/%C3%BC", EscapeURIPath("/hello world/ü"))
	assert.Equal(t, "/a:b@c&d+e$f,g-h_i.j!k~l*m'n(o)", EscapeURIPath("/a:b@c&d+e$f,g-h_i.j!k~l*m'n(o)"))
	assert.Equal(t, "/q%3Fx%23y%25", EscapeURIPath("/q?x#y%"))
}

func TestIRIToURI(t *testing.T) {
	assert.Equal(t, "a=1&b=%C3%BC", IRIToURI("a=1&b=ü"))
	assert.Equal(t, "/path%20with%20space?q=%2F#frag", IRIToURI("/path with space?q=%2F#frag"))
	assert.Equal(t, "https://example.com/[x]", IRIToURI("https://example.com/[x]"))
}

func TestScopeFullPath(t *testing.T) {
	s := testURIScope(Settings{}, "example.com", "/foo bar", "x=ü")

	fullpath, err := s.FullPath(false)

	assert.NoError(t, err)
	assert.Equal(t, "/foo%20bar?x=%C3%BC", fullpath)

	fullpath, err = s.FullPath(true)

	assert.NoError(t, err)
	assert.Equal(t, "/foo%20bar/?x=%C3%BC", fullpath)

	fullpath, err = testURIScope(Settings{}, "example.com", "/foo/", "").FullPath(true)

	assert.NoError(t, err)
	assert.Equal(t, "/foo/", fullpath)

	_, err = New(nil, Settings{}).FullPath(false)

	assert.True(t, errors.Is(err, ErrAttributeNotFound))
}

func TestScopeAbsoluteURI(t *testing.T) {
	settings := Settings{
		AllowedHosts: []string{"example.com"},
	}

	uri, err := testURIScope(settings, "example.com", "/foo", "a=1").AbsoluteURI()

	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/foo?a=1", uri)

	uri, err = testURIScope(settings, "example.com", "//evil", "").AbsoluteURI()

	assert.NoError(t, err)
	assert.Equal(t, "https://example.com//evil", uri)

	uri, err = testURIScope(Settings{Debug: true}, "localhost:8000", "/foo", "").AbsoluteURI()

	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/foo", uri)

	_, err = testURIScope(settings, "evil.com", "/foo", "").AbsoluteURI()

	assert.True(t, errors.Is(err, ErrDisallowedHost))
}

func TestScopeBuildAbsoluteURI(t *testing.T) {
	s := testURIScope(Settings{AllowedHosts: []string{"example.com"}}, "example.com", "/foo/bar", "")

	for _, c := range []struct {
		location string
		expected string
	}{
		{location: "/bar", expected: "https://example.com/bar"},
		{location: "https://other.org/ü", expected: "https://other.org/%C3%BC"},
		{location: "baz", expected: "https://example.com/foo/baz"},
		{location: "?page=2", expected: "https://example.com/foo/bar?page=2"},
		{location: "/a/../b", expected: "https://example.com/b"},
		{location: "//cdn.example.org/x", expected: "https://cdn.example.org/x"},
		{location: "/with space", expected: "https://example.com/with%20space"},
		{location: "https:foo", expected: "https://example.com/foo/foo"},
		{location: "https:/foo", expected: "https://example.com/foo"},
		{location: "https:?q=1", expected: "https://example.com/foo/bar?q=1"},
		{location: "HTTPS:baz", expected: "https://example.com/foo/baz"},
	} {
		uri, err := s.BuildAbsoluteURI(c.location)

		assert.NoError(t, err, c.location)
		assert.Equal(t, c.expected, uri, c.location)
	}
}

func TestScopeBuildAbsoluteURICached(t *testing.T) {
	s := testURIScope(Settings{AllowedHosts: []string{"example.com"}}, "example.com", "/", "")

	uri, err := s.BuildAbsoluteURI("/x")

	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/x", uri)

	s.SetItem(KeyMeta, Meta{MetaHost: "evil.com"})

	uri, err = s.BuildAbsoluteURI("/y")

	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/y", uri)

	_, err = s.Host()

	assert.True(t, errors.Is(err, ErrDisallowedHost))
}

func TestScopeBuildAbsoluteURIDisallowed(t *testing.T) {
	s := testURIScope(Settings{AllowedHosts: []string{"example.com"}}, "evil.com", "/", "")

	uri, err := s.BuildAbsoluteURI("https://other.org/x")

	assert.NoError(t, err)
	assert.Equal(t, "https://other.org/x", uri)

	_, err = s.BuildAbsoluteURI("/x")

	assert.True(t, errors.Is(err, ErrDisallowedHost))
}

func TestScopeOperationFromChannelsScope(t *testing.T) {
	reqscope := testURIScope(Settings{AllowedHosts: []string{"example.com"}}, "example.com", "/graphql", "a=1")

	opscope := reqscope.Operation(map[string]interface{}{
		"operation_id": "1",
	})

	path, err := opscope.Path()

	assert.NoError(t, err)
	assert.Equal(t, "/graphql", path)

	meta, err := opscope.Meta()

	assert.NoError(t, err)
	assert.Equal(t, "example.com", meta.Get(MetaHost))
	assert.Equal(t, "a=1", meta.Get(MetaQueryString))

	host, err := opscope.Host()

	assert.NoError(t, err)
	assert.Equal(t, "example.com", host)

	uri, err := opscope.AbsoluteURI()

	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/graphql?a=1", uri)

	fullpath, err := opscope.Operation(nil).FullPath(true)

	assert.NoError(t, err)
	assert.Equal(t, "/graphql/?a=1", fullpath)
}

func TestScopeOperationDisallowedHost(t *testing.T) {
	reqscope := testURIScope(Settings{Debug: true}, "evil.example", "/graphql", "")

	_, err := reqscope.Operation(nil).Host()

	assert.True(t, errors.Is(err, ErrDisallowedHost))

	_, err = reqscope.Host()

	assert.True(t, errors.Is(err, ErrDisallowedHost))

	_, err = reqscope.Operation(nil).BuildAbsoluteURI("/x")

	assert.True(t, errors.Is(err, ErrDisallowedHost))
}
