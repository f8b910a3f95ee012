package wsscope

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLoadSettings(t *testing.T) {
	settings, err := LoadSettings(strings.NewReader(`
debug: true
allowed_hosts:
  - Example.com
  - .bücher.example
  - "*"
use_x_forwarded_host: true
`))

	assert.NoError(t, err)
	assert.Equal(t, Settings{
		AllowedHosts:      []string{"example.com", ".xn--bcher-kva.example", "*"},
		Debug:             true,
		UseXForwardedHost: true,
	}, settings)
}

func TestLoadSettingsEmpty(t *testing.T) {
	settings, err := LoadSettings(strings.NewReader(""))

	assert.NoError(t, err)
	assert.Equal(t, Settings{}, settings)
}

func TestLoadSettingsUnknownField(t *testing.T) {
	_, err := LoadSettings(strings.NewReader("allowed_host: [example.com]\n"))

	assert.Error(t, err)
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	assert.NoError(t, os.WriteFile(path, []byte("allowed_hosts: [example.com]\n"), 0o600))

	settings, err := LoadSettingsFile(path)

	assert.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, settings.AllowedHosts)

	_, err = LoadSettingsFile(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestSettingsNormalize(t *testing.T) {
	settings := Settings{
		AllowedHosts: []string{" API.Example.com ", "", "[::1]", "-invalid-"},
	}.Normalize()

	assert.Equal(t, []string{"api.example.com", "[::1]", "-invalid-"}, settings.AllowedHosts)

	assert.Nil(t, Settings{}.Normalize().AllowedHosts)
}

func TestSettingsApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDebug:        "true",
		EnvAllowedHosts: "a.example.com, .b.example.com",
	}

	lookup := func(key string) (string, bool) {
		v, ok := env[key]

		return v, ok
	}

	var buf bytes.Buffer

	settings, err := Settings{UseXForwardedHost: true}.ApplyEnv(zerolog.New(&buf), lookup)

	assert.NoError(t, err)
	assert.Equal(t, Settings{
		AllowedHosts:      []string{"a.example.com", ".b.example.com"},
		Debug:             true,
		UseXForwardedHost: true,
	}, settings)
	assert.Contains(t, buf.String(), EnvDebug)
	assert.Contains(t, buf.String(), `"source":"environment"`)

	env[EnvUseXForwardedHost] = "  "

	settings, err = Settings{UseXForwardedHost: true}.ApplyEnv(zerolog.Nop(), lookup)

	assert.NoError(t, err)
	assert.True(t, settings.UseXForwardedHost)

	env[EnvUseXForwardedHost] = "maybe"

	_, err = Settings{}.ApplyEnv(zerolog.Nop(), lookup)

	assert.Error(t, err)

	env[EnvDebug] = "nope"

	_, err = Settings{}.ApplyEnv(zerolog.Nop(), lookup)

	assert.Error(t, err)
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv(EnvAllowedHosts, "example.com")
	t.Setenv(EnvDebug, "")

	settings, err := SettingsFromEnv(zerolog.Nop())

	assert.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, settings.AllowedHosts)
	assert.False(t, settings.Debug)
}
