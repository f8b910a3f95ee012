package wsscope

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrDisallowedHost matches every *DisallowedHostError with errors.Is
var ErrDisallowedHost = errors.New("disallowed host")

// DisallowedHostError is returned when requested host does not validate against allowed hosts
type DisallowedHostError struct {
	Host   string
	Domain string
}

func (e *DisallowedHostError) Error() string {
	msg := fmt.Sprintf("Invalid HTTP_HOST header: %s.", quoteHost(e.Host))

	if e.Domain != "" {
		return msg + fmt.Sprintf(" You may need to add %s to ALLOWED_HOSTS.", quoteHost(e.Domain))
	}

	return msg + " The domain name provided is not valid according to RFC 1034/1035."
}

// quoteHost quotes host in repr style: single quotes unless host contains a single quote and no
// double quotes, with backslash escapes for quotes, control and non-printable characters
func quoteHost(host string) string {
	q := '\''

	if strings.ContainsRune(host, '\'') && !strings.ContainsRune(host, '"') {
		q = '"'
	}

	var b strings.Builder

	b.WriteRune(q)

	for i := 0; i < len(host); {
		r, size := utf8.DecodeRuneInString(host[i:])

		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&b, "\\x%02x", host[i])
		case r == q, r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteString("\\t")
		case r == '\n':
			b.WriteString("\\n")
		case r == '\r':
			b.WriteString("\\r")
		case r < 0x80 && (r < 0x20 || r == 0x7f):
			fmt.Fprintf(&b, "\\x%02x", r)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(&b, "\\x%02x", r)
		case r <= 0xffff:
			fmt.Fprintf(&b, "\\u%04x", r)
		default:
			fmt.Fprintf(&b, "\\U%08x", r)
		}

		i += size
	}

	b.WriteRune(q)

	return b.String()
}

// Is implementation, for errors.Is(err, ErrDisallowedHost)
func (e *DisallowedHostError) Is(target error) bool {
	return target == ErrDisallowedHost
}

var debugAllowedHosts = []string{".localhost", "127.0.0.1", "[::1]"}

var hostValidation = regexp.MustCompile(`^([a-z0-9.-]+|\[[a-f0-9]*:[a-f0-9.:]+\])(:[0-9]+)?$`)

// SplitDomainPort returns lower-cased domain and port of the host, or empty strings if host is malformed.
// Trailing dot of the domain is dropped.
func SplitDomainPort(host string) (domain, port string) {
	host = strings.ToLower(host)

	if !hostValidation.MatchString(host) {
		return "", ""
	}

	if strings.HasSuffix(host, "]") {
		return host, ""
	}

	idx := strings.LastIndexByte(host, ':')
	if idx < 0 {
		domain = host
	} else {
		domain, port = host[:idx], host[idx+1:]
	}

	return strings.TrimSuffix(domain, "."), port
}

// IsSameDomain returns true if host matches the pattern. Pattern starting with a dot matches the domain itself and
// all its subdomains, otherwise match must be exact.
func IsSameDomain(host, pattern string) bool {
	if pattern == "" {
		return false
	}

	pattern = strings.ToLower(pattern)

	if pattern[0] == '.' {
		return strings.HasSuffix(host, pattern) || host == pattern[1:]
	}

	return host == pattern
}

func validateDomain(domain string, allowed []string) bool {
	for _, pattern := range allowed {
		if pattern == "*" || IsSameDomain(domain, pattern) {
			return true
		}
	}

	return false
}

// EffectiveAllowedHosts returns allowed host patterns, substituting localhost variants in debug mode when none were
// configured
func (settings Settings) EffectiveAllowedHosts() []string {
	if settings.Debug && len(settings.AllowedHosts) == 0 {
		return debugAllowedHosts
	}

	return settings.AllowedHosts
}

// ValidateHost returns host unchanged if it validates against allowed hosts, or *DisallowedHostError otherwise
func (settings Settings) ValidateHost(host string) (string, error) {
	domain, _ := SplitDomainPort(host)

	if domain != "" && validateDomain(domain, settings.EffectiveAllowedHosts()) {
		return host, nil
	}

	return "", &DisallowedHostError{
		Host:   host,
		Domain: domain,
	}
}

// ValidOrigin returns true if websocket handshake origin validates against allowed hosts.
// Missing origin is only accepted with wildcard allowed host.
func (settings Settings) ValidOrigin(origin string) bool {
	allowed := settings.EffectiveAllowedHosts()

	for _, pattern := range allowed {
		if pattern == "*" {
			return true
		}
	}

	if origin == "" {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	domain, _ := SplitDomainPort(u.Host)
	if domain == "" {
		return false
	}

	return validateDomain(domain, allowed)
}

// RawHost returns requested host without validation: X-Forwarded-Host if enabled by settings and present, otherwise
// Host header, otherwise localhost
func (s *Scope) RawHost() (string, error) {
	meta, err := s.Meta()
	if err != nil {
		return "", err
	}

	if s.settings.UseXForwardedHost {
		if host, ok := meta[MetaXForwardedHost]; ok {
			return host, nil
		}
	}

	if host, ok := meta[MetaHost]; ok {
		return host, nil
	}

	return "localhost", nil
}

// Host returns requested host, validated against allowed hosts
func (s *Scope) Host() (string, error) {
	host, err := s.RawHost()
	if err != nil {
		return "", err
	}

	return s.settings.ValidateHost(host)
}

// IsSecure returns true unless settings are in debug mode
func (s *Scope) IsSecure() bool {
	return !s.settings.Debug
}
