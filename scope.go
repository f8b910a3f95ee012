package wsscope

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrAttributeNotFound returned when attribute is present neither in scope nor in its channels_scope fallback
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrInvalidScope returned when scope value has unexpected type or encoding
	ErrInvalidScope = errors.New("invalid scope")
)

// Scope wraps connection scope mapping, providing accessors with fallback to nested channels_scope mapping
type Scope struct {
	values     map[string]interface{}
	settings   Settings
	schemeHost string
	mutex      sync.RWMutex
}

// New returns Scope wrapping provided values, without copying them
func New(values map[string]interface{}, settings Settings) *Scope {
	if values == nil {
		values = make(map[string]interface{})
	}

	return &Scope{
		values:   values,
		settings: settings,
	}
}

// Map returns wrapped mapping. Writes to the returned map bypass scope locking and are not safe for concurrent use.
func (s *Scope) Map() map[string]interface{} {
	return s.values
}

// Settings returns settings scope was created with
func (s *Scope) Settings() Settings {
	return s.settings
}

// Operation returns new scope for operation-specific values, falling back to this scope and, through it, to its
// channels_scope mapping
func (s *Scope) Operation(values map[string]interface{}) *Scope {
	if values == nil {
		values = make(map[string]interface{})
	}

	values[KeyChannelsScope] = s

	return New(values, s.settings)
}

func lookup(v interface{}, name string) (interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		res, ok := t[name]

		return res, ok
	case *Scope:
		if t == nil {
			return nil, false
		}

		v, err := t.Attr(name)

		return v, err == nil
	}

	return nil, false
}

// Attr returns named attribute from the scope, or from channels_scope mapping if scope does not have it.
// Names starting with underscore are never resolved.
func (s *Scope) Attr(name string) (interface{}, error) {
	if strings.HasPrefix(name, "_") {
		return nil, fmt.Errorf("%w: %s", ErrAttributeNotFound, name)
	}

	s.mutex.RLock()

	v, ok := s.values[name]
	fallback := s.values[KeyChannelsScope]

	s.mutex.RUnlock()

	if ok {
		return v, nil
	}

	if v, ok = lookup(fallback, name); ok {
		return v, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrAttributeNotFound, name)
}

// SetAttr stores attribute in the scope
func (s *Scope) SetAttr(name string, value interface{}) {
	s.SetItem(name, value)
}

// Item returns value stored in the scope itself, without fallback
func (s *Scope) Item(key string) (v interface{}, ok bool) {
	s.mutex.RLock()

	v, ok = s.values[key]

	s.mutex.RUnlock()

	return
}

// SetItem stores value in the scope
func (s *Scope) SetItem(key string, value interface{}) {
	s.mutex.Lock()

	s.values[key] = value

	s.mutex.Unlock()
}

// Delete removes key from the scope, returns false if there was no such key
func (s *Scope) Delete(key string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, ok := s.values[key]
	if ok {
		delete(s.values, key)
	}

	return ok
}

// Contains returns true if key is present in the scope itself
func (s *Scope) Contains(key string) bool {
	_, ok := s.Item(key)

	return ok
}

func (s *Scope) String() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return fmt.Sprint(s.values)
}

// Type returns scope type, http or websocket
func (s *Scope) Type() string {
	return s.attrString(KeyType)
}

// Path returns request path
func (s *Scope) Path() (string, error) {
	v, err := s.Attr(KeyPath)
	if err != nil {
		return "", err
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	}

	return "", fmt.Errorf("%w: %s has type %T", ErrInvalidScope, KeyPath, v)
}

// Subprotocols returns websocket subprotocols requested by client
func (s *Scope) Subprotocols() []string {
	v, err := s.Attr(KeySubprotocols)
	if err != nil {
		return nil
	}

	res, _ := v.([]string)

	return res
}

func (s *Scope) attrString(name string) string {
	v, err := s.Attr(name)
	if err != nil {
		return ""
	}

	res, _ := v.(string)

	return res
}
