// Package narada is the Go client SDK for the Narada browser automation
// agent. A Client launches or attaches to a Chrome window running the Narada
// extension, completes the initialization handshake, and returns a
// BrowserWindow handle through which agent tasks and extension actions are
// dispatched via the Narada API.
package narada

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/NaradaAI/narada-go/api/schemas"
	"github.com/NaradaAI/narada-go/internal/apiclient"
	"github.com/NaradaAI/narada-go/internal/browser"
	"github.com/NaradaAI/narada-go/internal/config"
)

// Client is the SDK entry point. It is safe for concurrent use; windows
// opened through one Client share its HTTP transport.
type Client struct {
	cfg    *config.Config
	api    *apiclient.Client
	coord  *browser.Coordinator
	logger *zap.Logger

	versionOnce sync.Once
	versionErr  error
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	cfg         *config.Config
	apiKey      string
	authHeaders map[string]string
	baseURL     string
	logger      *zap.Logger
	httpClient  *http.Client
	prompter    browser.Prompter
}

// WithConfig supplies an already-loaded configuration, e.g. from a config
// file, instead of the environment-derived defaults. Other options still
// overlay it.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithAPIKey sets the API key explicitly instead of reading NARADA_API_KEY.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithAuthHeaders replaces the API-key header scheme with arbitrary headers
// sent on every API request.
func WithAuthHeaders(headers map[string]string) Option {
	return func(o *options) { o.authHeaders = headers }
}

// WithBaseURL overrides the API root (default https://api.narada.ai/fast/v2,
// or NARADA_API_BASE_URL).
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithLogger supplies the logger; default is a no-op logger, since a library
// should stay quiet unless asked.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithPrompter overrides the interactive-mode console prompter.
func WithPrompter(p browser.Prompter) Option {
	return func(o *options) { o.prompter = p }
}

// New creates a Client. The API key is required unless custom auth headers
// are provided: pass WithAPIKey or set NARADA_API_KEY.
func New(opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var cfg *config.Config
	if o.cfg != nil {
		// Copy so option overlays never mutate the caller's configuration.
		copied := *o.cfg
		cfg = &copied
	} else {
		loaded, err := config.Default()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.apiKey != "" {
		cfg.API.Key = o.apiKey
	}
	if o.baseURL != "" {
		cfg.API.BaseURL = o.baseURL
	}
	if o.authHeaders == nil && cfg.API.Key == "" {
		return nil, fmt.Errorf("narada: an API key is required; pass WithAPIKey or set NARADA_API_KEY")
	}

	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	api := apiclient.New(apiclient.Options{
		BaseURL:     cfg.API.BaseURL,
		APIKey:      cfg.API.Key,
		AuthHeaders: o.authHeaders,
		HTTPClient:  o.httpClient,
		Logger:      logger,
	})

	prompter := o.prompter
	if prompter == nil {
		prompter = browser.NewConsolePrompter()
	}

	return &Client{
		cfg:    cfg,
		api:    api,
		coord:  browser.NewCoordinator(logger, prompter),
		logger: logger.Named("narada"),
	}, nil
}

// ensureCompatibleVersion enforces the server-declared minimum SDK version.
// The check runs once per Client. An unreachable config endpoint is tolerated;
// an explicit floor above our version is not.
func (c *Client) ensureCompatibleVersion(ctx context.Context) error {
	c.versionOnce.Do(func() {
		cfg, err := c.api.FetchSDKConfig(ctx)
		if err != nil || cfg == nil {
			return
		}
		pkg, ok := cfg.Packages[configPackageName]
		if !ok || pkg.MinRequiredVersion == "" {
			return
		}
		if semver.Compare("v"+Version, "v"+pkg.MinRequiredVersion) < 0 {
			c.versionErr = fmt.Errorf(
				"narada: SDK version %s is no longer supported, please upgrade to %s or higher",
				Version, pkg.MinRequiredVersion)
		}
	})
	return c.versionErr
}

// browserConfig merges the per-call browser options over the configured
// defaults.
func (c *Client) browserConfig(opts *BrowserOptions) *config.BrowserConfig {
	cfg := c.cfg.Browser
	if opts == nil {
		return &cfg
	}
	if opts.ExecutablePath != "" {
		cfg.ExecutablePath = opts.ExecutablePath
	}
	if opts.UserDataDir != "" {
		cfg.UserDataDir = opts.UserDataDir
	}
	if opts.ProfileDirectory != "" {
		cfg.ProfileDirectory = opts.ProfileDirectory
	}
	if opts.CDPPort != 0 {
		cfg.CDPPort = opts.CDPPort
	}
	if opts.CDPURL != "" {
		cfg.CDPURL = opts.CDPURL
	}
	if opts.InitializationURL != "" {
		cfg.InitializationURL = opts.InitializationURL
	}
	if opts.ExtensionID != "" {
		cfg.ExtensionID = opts.ExtensionID
	}
	if opts.HandshakeTimeout > 0 {
		cfg.HandshakeTimeout = opts.HandshakeTimeout
	}
	cfg.Interactive = opts.Interactive
	if opts.Proxy != nil {
		cfg.Proxy = &config.ProxyConfig{
			Server:           opts.Proxy.Server,
			Username:         opts.Proxy.Username,
			Password:         opts.Proxy.Password,
			Bypass:           opts.Proxy.Bypass,
			IgnoreCertErrors: opts.Proxy.IgnoreCertErrors,
		}
	}
	return &cfg
}

// BrowserOptions customize one window initialization. Zero-valued fields fall
// back to the Client's configuration defaults.
type BrowserOptions struct {
	ExecutablePath    string
	UserDataDir       string
	ProfileDirectory  string
	CDPPort           int
	CDPURL            string
	InitializationURL string
	ExtensionID       string
	// Interactive narrates recoverable handshake failures on the console and
	// waits for the user to fix them instead of failing fast.
	Interactive      bool
	HandshakeTimeout time.Duration
	Proxy            *ProxyOptions
}

// ProxyOptions route the launched browser through a proxy. Credentials, when
// present, are answered to Chrome's auth challenge over the debugging
// protocol so no credentials dialog ever appears.
type ProxyOptions struct {
	Server           string
	Username         string
	Password         string
	Bypass           string
	IgnoreCertErrors bool
}

// CloudBrowserOptions customize a cloud browser session.
type CloudBrowserOptions struct {
	BrowserOptions

	// SessionName labels the session in the Narada console.
	SessionName string
	// SessionTimeout asks the backend to reap the session after this long.
	SessionTimeout time.Duration
}

// OpenAndInitializeBrowserWindow launches a new local browser window and
// completes the extension handshake.
func (c *Client) OpenAndInitializeBrowserWindow(ctx context.Context, opts *BrowserOptions) (*BrowserWindow, error) {
	if err := c.ensureCompatibleVersion(ctx); err != nil {
		return nil, err
	}

	cfg := c.browserConfig(opts)
	conn, err := c.coord.Launch(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return newBrowserWindow(c.api, conn.BrowserWindowID, c.logger, &localSession{
		conn: conn,
		pid:  conn.BrowserPID,
	}), nil
}

// InitializeInExistingBrowserWindow completes the handshake in an
// already-running browser reachable at the configured debugging URL. Proxy
// options are rejected: proxy flags only apply at launch.
func (c *Client) InitializeInExistingBrowserWindow(ctx context.Context, opts *BrowserOptions) (*BrowserWindow, error) {
	if err := c.ensureCompatibleVersion(ctx); err != nil {
		return nil, err
	}

	cfg := c.browserConfig(opts)
	conn, err := c.coord.AttachExisting(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return newBrowserWindow(c.api, conn.BrowserWindowID, c.logger, &localSession{conn: conn}), nil
}

// OpenAndInitializeCloudBrowserWindow provisions a browser in the Narada
// cloud and initializes the extension in it. If initialization fails, the
// session is stopped so it does not keep billing.
func (c *Client) OpenAndInitializeCloudBrowserWindow(ctx context.Context, opts *CloudBrowserOptions) (*BrowserWindow, error) {
	if err := c.ensureCompatibleVersion(ctx); err != nil {
		return nil, err
	}

	var browserOpts *BrowserOptions
	var sessionName string
	var sessionTimeout time.Duration
	if opts != nil {
		browserOpts = &opts.BrowserOptions
		sessionName = opts.SessionName
		sessionTimeout = opts.SessionTimeout
	}
	cfg := c.browserConfig(browserOpts)

	session, err := c.api.CreateCloudBrowserSession(ctx, sessionName, sessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("creating cloud browser session: %w", err)
	}

	conn, err := c.coord.InitializeCloud(ctx, cfg, session)
	if err != nil {
		if stopErr := c.api.StopCloudBrowserSession(context.WithoutCancel(ctx), session.SessionID, "failed"); stopErr != nil {
			c.logger.Warn("failed to clean up cloud browser session",
				zap.String("session_id", session.SessionID), zap.Error(stopErr))
		}
		return nil, err
	}

	return newBrowserWindow(c.api, conn.BrowserWindowID, c.logger, &cloudSession{
		conn:      conn,
		api:       c.api,
		sessionID: session.SessionID,
	}), nil
}

// ConnectToBrowserWindow returns a handle to a window initialized elsewhere,
// addressed by its browser window ID. No CDP connection is involved; all
// operations go through the API.
func (c *Client) ConnectToBrowserWindow(browserWindowID string) *BrowserWindow {
	return newBrowserWindow(c.api, browserWindowID, c.logger, remoteSession{})
}

// UploadFile uploads an attachment for use in a subsequent Agent call. The
// file is stored for one day and only accessible to the uploading user.
func (c *Client) UploadFile(ctx context.Context, filename string) (*schemas.FileRef, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.api.UploadFile(ctx, filename, f)
}
