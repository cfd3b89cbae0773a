// Package config holds the SDK's configuration surface: API credentials and
// endpoint, browser launch parameters, proxy settings and logging. All values
// are explicit and threaded through construction; nothing reads the process
// environment outside of Load.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger"`
	API     APIConfig     `mapstructure:"api"`
	Browser BrowserConfig `mapstructure:"browser"`
}

// ColorConfig defines console colors per log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" json:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" json:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" json:"warn" yaml:"warn"`
	Error string `mapstructure:"error" json:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" json:"fatal" yaml:"fatal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" json:"level" yaml:"level"`
	Format      string      `mapstructure:"format" json:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" json:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" json:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" json:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" json:"colors" yaml:"colors"`
}

// APIConfig addresses the Narada backend.
type APIConfig struct {
	// Key authenticates every request via the x-api-key header.
	Key string `mapstructure:"key"`
	// BaseURL is the versioned API root.
	BaseURL string `mapstructure:"base_url"`
}

// BrowserConfig holds launch and handshake settings for a local browser.
type BrowserConfig struct {
	ExecutablePath    string        `mapstructure:"executable_path"`
	UserDataDir       string        `mapstructure:"user_data_dir"`
	ProfileDirectory  string        `mapstructure:"profile_directory"`
	CDPPort           int           `mapstructure:"cdp_port"`
	CDPURL            string        `mapstructure:"cdp_url"`
	InitializationURL string        `mapstructure:"initialization_url"`
	ExtensionID       string        `mapstructure:"extension_id"`
	Interactive       bool          `mapstructure:"interactive"`
	HandshakeTimeout  time.Duration `mapstructure:"handshake_timeout"`
	Proxy             *ProxyConfig  `mapstructure:"proxy"`
}

// ProxyConfig configures the proxy the launched browser routes through.
type ProxyConfig struct {
	Server           string `mapstructure:"server"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Bypass           string `mapstructure:"bypass"`
	IgnoreCertErrors bool   `mapstructure:"ignore_cert_errors"`
}

// RequiresAuthentication reports whether credentials must be supplied through
// the CDP auth-challenge interceptor during launch.
func (p *ProxyConfig) RequiresAuthentication() bool {
	return p != nil && p.Username != ""
}

// Validate checks the proxy settings for internal consistency.
func (p *ProxyConfig) Validate() error {
	if p.Server == "" {
		return fmt.Errorf("proxy server must be set")
	}
	if (p.Username == "") != (p.Password == "") {
		return fmt.Errorf("proxy username and password must be set together")
	}
	return nil
}

// ResolvedCDPURL returns the debugging endpoint, deriving it from the port
// when no explicit URL was configured.
func (b *BrowserConfig) ResolvedCDPURL() string {
	if b.CDPURL != "" {
		return b.CDPURL
	}
	return fmt.Sprintf("http://127.0.0.1:%d", b.CDPPort)
}

// Validate checks the configuration for values that would make the handshake
// impossible.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if c.Browser.CDPPort <= 0 && c.Browser.CDPURL == "" {
		return fmt.Errorf("browser.cdp_port or browser.cdp_url must be set")
	}
	if c.Browser.InitializationURL == "" {
		return fmt.Errorf("browser.initialization_url must be set")
	}
	if c.Browser.ExtensionID == "" {
		return fmt.Errorf("browser.extension_id must be set")
	}
	if c.Browser.Proxy != nil {
		if err := c.Browser.Proxy.Validate(); err != nil {
			return fmt.Errorf("invalid proxy configuration: %w", err)
		}
	}
	return nil
}

// defaultExecutablePath picks the conventional Chrome location per platform.
func defaultExecutablePath() string {
	switch runtime.GOOS {
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
	case "windows":
		return `C:\Program Files\Google\Chrome\Application\chrome.exe`
	default:
		return "/usr/bin/google-chrome"
	}
}

func defaultUserDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "narada-user-data")
	}
	return filepath.Join(home, ".narada", "user-data")
}

// SetDefaults registers the default values so the SDK runs with a minimal
// config file or none at all.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "narada")
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "red")

	v.SetDefault("api.base_url", "https://api.narada.ai/fast/v2")

	v.SetDefault("browser.executable_path", defaultExecutablePath())
	v.SetDefault("browser.user_data_dir", defaultUserDataDir())
	v.SetDefault("browser.profile_directory", "Default")
	v.SetDefault("browser.cdp_port", 9222)
	v.SetDefault("browser.initialization_url", "https://app.narada.ai/initialize")
	v.SetDefault("browser.extension_id", "hbkagjmdmkjeicjinkhfafcpocbckgmc")
	v.SetDefault("browser.interactive", false)
	v.SetDefault("browser.handshake_timeout", 30*time.Second)
}

// Load unmarshals the configuration from Viper after binding the environment
// variables that may override it (NARADA_API_KEY, NARADA_API_BASE_URL).
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("NARADA")
	v.AutomaticEnv()
	_ = v.BindEnv("api.key", "NARADA_API_KEY")
	_ = v.BindEnv("api.base_url", "NARADA_API_BASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration produced by the registered defaults plus
// environment overrides.
func Default() (*Config, error) {
	return Load(viper.New())
}
