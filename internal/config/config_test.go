package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NaradaAI/narada-go/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://api.narada.ai/fast/v2", cfg.API.BaseURL)
	assert.Equal(t, 9222, cfg.Browser.CDPPort)
	assert.Equal(t, "Default", cfg.Browser.ProfileDirectory)
	assert.Equal(t, "https://app.narada.ai/initialize", cfg.Browser.InitializationURL)
	assert.NotEmpty(t, cfg.Browser.ExtensionID)
	assert.NotEmpty(t, cfg.Browser.ExecutablePath)
	assert.False(t, cfg.Browser.Interactive)
	assert.Equal(t, 30*time.Second, cfg.Browser.HandshakeTimeout)
	assert.Nil(t, cfg.Browser.Proxy)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("NARADA_API_KEY", "test-key-123")
	t.Setenv("NARADA_API_BASE_URL", "https://api.example.test/v9")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "test-key-123", cfg.API.Key)
	assert.Equal(t, "https://api.example.test/v9", cfg.API.BaseURL)
}

func TestResolvedCDPURL(t *testing.T) {
	t.Parallel()

	b := config.BrowserConfig{CDPPort: 9321}
	assert.Equal(t, "http://127.0.0.1:9321", b.ResolvedCDPURL())

	b.CDPURL = "http://10.0.0.5:9222"
	assert.Equal(t, "http://10.0.0.5:9222", b.ResolvedCDPURL())
}

func TestProxyConfigValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		proxy   config.ProxyConfig
		wantErr bool
	}{
		{"ServerOnly", config.ProxyConfig{Server: "proxy.example.com:3128"}, false},
		{"WithCredentials", config.ProxyConfig{Server: "p:3128", Username: "u", Password: "p"}, false},
		{"MissingServer", config.ProxyConfig{Username: "u", Password: "p"}, true},
		{"UsernameWithoutPassword", config.ProxyConfig{Server: "p:3128", Username: "u"}, true},
	}

	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.proxy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProxyRequiresAuthentication(t *testing.T) {
	t.Parallel()

	var p *config.ProxyConfig
	assert.False(t, p.RequiresAuthentication())
	assert.False(t, (&config.ProxyConfig{Server: "p:3128"}).RequiresAuthentication())
	assert.True(t, (&config.ProxyConfig{Server: "p:3128", Username: "u", Password: "x"}).RequiresAuthentication())
}

func TestValidateRejectsBrokenConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	cfg.Browser.InitializationURL = ""
	assert.Error(t, cfg.Validate())
}
