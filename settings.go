package wsscope

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/idna"
	"gopkg.in/yaml.v3"
)

// Environment variables recognized by Settings.ApplyEnv
const (
	EnvDebug             = "WSSCOPE_DEBUG"
	EnvAllowedHosts      = "WSSCOPE_ALLOWED_HOSTS"
	EnvUseXForwardedHost = "WSSCOPE_USE_X_FORWARDED_HOST"
)

// Settings used by scope helpers
type Settings struct {
	// AllowedHosts host patterns requests are allowed to address.
	// "*" matches any host, ".example.com" matches example.com and all of its subdomains.
	AllowedHosts []string `yaml:"allowed_hosts"`

	// Debug disables secure scheme and allows localhost variants when AllowedHosts is empty
	Debug bool `yaml:"debug"`

	// UseXForwardedHost prefers X-Forwarded-Host header over Host header
	UseXForwardedHost bool `yaml:"use_x_forwarded_host"`
}

// LookupFunc looks up environment variable, in image of os.LookupEnv
type LookupFunc func(key string) (string, bool)

func normalizeHostPattern(pattern string) string {
	pattern = strings.ToLower(strings.TrimSpace(pattern))

	if pattern == "" || pattern == "*" || strings.HasPrefix(pattern, "[") {
		return pattern
	}

	prefix := ""

	if strings.HasPrefix(pattern, ".") {
		prefix, pattern = ".", pattern[1:]
	}

	ascii, err := idna.Lookup.ToASCII(pattern)
	if err != nil {
		return prefix + pattern
	}

	return prefix + ascii
}

// Normalize returns copy of settings with allowed hosts lower-cased and internationalized domain names converted to
// their ASCII form
func (settings Settings) Normalize() Settings {
	if settings.AllowedHosts == nil {
		return settings
	}

	hosts := make([]string, 0, len(settings.AllowedHosts))

	for _, h := range settings.AllowedHosts {
		if h = normalizeHostPattern(h); h != "" {
			hosts = append(hosts, h)
		}
	}

	settings.AllowedHosts = hosts

	return settings
}

// LoadSettings reads YAML-encoded settings, rejecting unknown fields
func LoadSettings(r io.Reader) (settings Settings, err error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err = dec.Decode(&settings)
	if errors.Is(err, io.EOF) {
		err = nil
	}

	if err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	return settings.Normalize(), nil
}

// LoadSettingsFile reads YAML-encoded settings from file
func LoadSettingsFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	return LoadSettings(bytes.NewReader(data))
}

// SettingsFromEnv returns settings populated from process environment
func SettingsFromEnv(logger zerolog.Logger) (Settings, error) {
	return Settings{}.ApplyEnv(logger, os.LookupEnv)
}

// ApplyEnv returns copy of settings with values overridden by environment variables, where present and non-empty
func (settings Settings) ApplyEnv(logger zerolog.Logger, lookup LookupFunc) (Settings, error) {
	var err error

	if value, ok := envValue(logger, lookup, EnvDebug); ok {
		settings.Debug, err = strconv.ParseBool(value)
		if err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", EnvDebug, err)
		}
	}

	if value, ok := envValue(logger, lookup, EnvAllowedHosts); ok {
		settings.AllowedHosts = strings.Split(value, ",")
	}

	if value, ok := envValue(logger, lookup, EnvUseXForwardedHost); ok {
		settings.UseXForwardedHost, err = strconv.ParseBool(value)
		if err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", EnvUseXForwardedHost, err)
		}
	}

	return settings.Normalize(), nil
}

func envValue(logger zerolog.Logger, lookup LookupFunc, key string) (string, bool) {
	value, exists := lookup(key)

	switch {
	case !exists:
		logger.Debug().
			Str("key", key).
			Str("source", "default").
			Msg("using default value")

		return "", false
	case strings.TrimSpace(value) == "":
		logger.Debug().
			Str("key", key).
			Str("source", "default").
			Msg("using default value (environment variable is empty)")

		return "", false
	}

	logger.Debug().
		Str("key", key).
		Str("value", value).
		Str("source", "environment").
		Msg("using environment variable")

	return strings.TrimSpace(value), true
}
