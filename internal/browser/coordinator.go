package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/NaradaAI/narada-go/api/schemas"
	"github.com/NaradaAI/narada-go/internal/config"
)

const (
	maxConnectAttempts    = 10
	maxCloudInitAttempts  = 5
	browserStartupDelay   = 2 * time.Second
	connectRetryDelay     = 2 * time.Second
	handshakeRetryDelay   = 3 * time.Second
	cloudInitRetryDelay   = 1 * time.Second
	cloudNavigationBudget = 60 * time.Second
)

// Connection is a live DevTools attachment to an initialized browser window.
// Closing it drops the DevTools connection only; the browser process belongs
// to the user and keeps running.
type Connection struct {
	BrowserWindowID string
	// BrowserPID is the launched process's PID, or zero when we attached to
	// an existing or cloud browser.
	BrowserPID int

	browserCtx   context.Context
	cancels      []context.CancelFunc
	sidePanelURL string
	logger       *zap.Logger
}

// Reinitialize reloads the extension's side panel page, cancelling any
// in-flight operations in this window.
func (c *Connection) Reinitialize(ctx context.Context) error {
	if c.sidePanelURL == "" {
		return fmt.Errorf("window has no tracked side panel")
	}
	info, err := locateTarget(c.browserCtx, c.sidePanelURL, 1, 0)
	if err != nil {
		return fmt.Errorf("side panel page not found: %w", err)
	}

	spCtx, cancel := chromedp.NewContext(c.browserCtx, chromedp.WithTargetID(info.TargetID))
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(spCtx, 10*time.Second)
	defer cancelTimeout()
	return chromedp.Run(ctx, chromedp.Reload())
}

// Close tears down the DevTools connection.
func (c *Connection) Close() {
	for i := len(c.cancels) - 1; i >= 0; i-- {
		c.cancels[i]()
	}
}

// Coordinator drives the initialization handshake against a browser. Timings
// are fields so tests can compress them.
type Coordinator struct {
	logger   *zap.Logger
	prompter Prompter

	startupDelay   time.Duration
	connectDelay   time.Duration
	handshakeDelay time.Duration
	cloudDelay     time.Duration
}

// NewCoordinator creates a Coordinator. A nil prompter selects the silent
// behavior where recoverable handshake outcomes fail immediately.
func NewCoordinator(logger *zap.Logger, prompter Prompter) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prompter == nil {
		prompter = silentPrompter{}
	}
	return &Coordinator{
		logger:         logger.Named("browser"),
		prompter:       prompter,
		startupDelay:   browserStartupDelay,
		connectDelay:   connectRetryDelay,
		handshakeDelay: handshakeRetryDelay,
		cloudDelay:     cloudInitRetryDelay,
	}
}

// Launch starts a new detached browser process, connects to it over the
// debugging protocol and completes the extension handshake.
func (c *Coordinator) Launch(ctx context.Context, cfg *config.BrowserConfig) (*Connection, error) {
	tag := newWindowTag()
	taggedURL := taggedInitializationURL(cfg.InitializationURL, tag)

	// With an authenticating proxy the browser starts on about:blank so the
	// auth interceptor is in place before the first network request;
	// otherwise Chrome pops its own credentials dialog during startup.
	proxyAuth := cfg.Proxy.RequiresAuthentication()
	startURL := taggedURL
	if proxyAuth {
		startURL = "about:blank"
	}

	pid, err := launchBrowser(cfg, startURL, c.logger)
	if err != nil {
		return nil, err
	}

	// Give the initial page a moment to open; connecting too early can show
	// an empty target list.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.startupDelay):
	}

	didInitialNavigation := false

	for attempt := 0; attempt < maxConnectAttempts; attempt++ {
		allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, cfg.ResolvedCDPURL())
		browserCtx, browserCancel := chromedp.NewContext(allocCtx,
			chromedp.WithLogf(c.logger.Sugar().Debugf),
			chromedp.WithErrorf(c.logger.Sugar().Errorf),
		)
		teardown := func() {
			browserCancel()
			allocCancel()
		}

		targets, err := chromedp.Targets(browserCtx)
		if err != nil {
			teardown()
			// The process may not accept DevTools connections yet.
			if attempt == maxConnectAttempts-1 {
				return nil, fmt.Errorf("connecting to browser at %s: %w", cfg.ResolvedCDPURL(), err)
			}
			c.logger.Debug("browser not ready for DevTools connection, retrying", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.connectDelay):
			}
			continue
		}

		if proxyAuth && !didInitialNavigation {
			if err := c.navigateThroughProxy(browserCtx, targets, taggedURL, cfg.Proxy); err != nil {
				teardown()
				return nil, err
			}
			didInitialNavigation = true
			targets, err = chromedp.Targets(browserCtx)
			if err != nil {
				teardown()
				return nil, err
			}
		}

		conn, err := c.completeHandshake(browserCtx, targets, taggedURL, cfg)
		if err != nil {
			teardown()
			return nil, err
		}
		if conn != nil {
			conn.BrowserPID = pid
			conn.cancels = []context.CancelFunc{allocCancel, browserCancel}
			return conn, nil
		}

		teardown()
		if attempt == maxConnectAttempts-1 {
			return nil, &schemas.TimeoutError{Message: "timed out waiting for initialization page"}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.handshakeDelay):
		}
	}

	return nil, &schemas.TimeoutError{Message: "timed out waiting for initialization page"}
}

// AttachExisting connects to an already-running browser and initializes the
// extension in a fresh tab. Proxy settings cannot apply here: they are launch
// flags, so an attached browser either already has them or never will.
func (c *Coordinator) AttachExisting(ctx context.Context, cfg *config.BrowserConfig) (*Connection, error) {
	if cfg.Proxy != nil {
		return nil, fmt.Errorf("proxy configuration requires launching the browser; it cannot apply to an existing process")
	}

	tag := newWindowTag()
	taggedURL := taggedInitializationURL(cfg.InitializationURL, tag)

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, cfg.ResolvedCDPURL())
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(c.logger.Sugar().Debugf),
		chromedp.WithErrorf(c.logger.Sugar().Errorf),
	)
	teardown := func() {
		browserCancel()
		allocCancel()
	}

	// Opening the initialization page in a new tab leaves the user's
	// existing tabs untouched.
	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	if err := chromedp.Run(tabCtx, chromedp.Navigate(taggedURL)); err != nil {
		tabCancel()
		teardown()
		return nil, fmt.Errorf("opening initialization page: %w", err)
	}

	windowID, err := c.waitForBrowserWindowID(tabCtx, cfg)
	if err != nil {
		tabCancel()
		teardown()
		return nil, err
	}

	spURL := sidePanelURL(cfg.ExtensionID, windowID)
	spInfo, err := locateTarget(browserCtx, spURL, maxConnectAttempts, c.connectDelay)
	if err != nil {
		tabCancel()
		teardown()
		return nil, err
	}
	if err := c.fixDownloadBehavior(browserCtx, spInfo.TargetID); err != nil {
		c.logger.Warn("failed to reset download behavior", zap.Error(err))
	}

	if cfg.Interactive {
		c.prompter.Success(windowID)
	}

	return &Connection{
		BrowserWindowID: windowID,
		browserCtx:      browserCtx,
		cancels:         []context.CancelFunc{allocCancel, browserCancel, tabCancel},
		sidePanelURL:    spURL,
		logger:          c.logger,
	}, nil
}

// InitializeCloud completes the handshake against a cloud browser session.
// The session's CDP WebSocket URL is pre-authorized, so no auth headers are
// involved in the attachment itself. The extension may still be installing
// when we arrive, so an extension-missing outcome is retried a few times.
func (c *Coordinator) InitializeCloud(ctx context.Context, cfg *config.BrowserConfig, session *schemas.CloudBrowserSession) (*Connection, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, session.CDPWebSocketURL, chromedp.NoModifyURL)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(c.logger.Sugar().Debugf),
		chromedp.WithErrorf(c.logger.Sugar().Errorf),
	)
	teardown := func() {
		browserCancel()
		allocCancel()
	}

	pageInfo, err := locateFirstPage(browserCtx)
	if err != nil {
		teardown()
		return nil, fmt.Errorf("cloud browser has no page target: %w", err)
	}

	pageCtx, pageCancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(pageInfo.TargetID))
	navCtx, cancelNav := context.WithTimeout(pageCtx, cloudNavigationBudget)
	err = chromedp.Run(navCtx, chromedp.Navigate(session.LoginURL))
	cancelNav()
	if err != nil {
		pageCancel()
		teardown()
		return nil, fmt.Errorf("navigating cloud browser to login page: %w", err)
	}

	var windowID string
	for attempt := 0; attempt < maxCloudInitAttempts; attempt++ {
		windowID, err = c.waitForBrowserWindowID(pageCtx, cfg)
		if err == nil {
			break
		}
		var missing *schemas.ExtensionMissingError
		if !errors.As(err, &missing) || attempt == maxCloudInitAttempts-1 {
			pageCancel()
			teardown()
			return nil, err
		}
		c.logger.Info("waiting for extension to be installed in cloud browser")
		select {
		case <-ctx.Done():
			pageCancel()
			teardown()
			return nil, ctx.Err()
		case <-time.After(c.cloudDelay):
		}
	}

	if cfg.Interactive {
		c.prompter.Success(windowID)
	}

	return &Connection{
		BrowserWindowID: windowID,
		browserCtx:      browserCtx,
		cancels:         []context.CancelFunc{allocCancel, browserCancel, pageCancel},
		sidePanelURL:    sidePanelURL(cfg.ExtensionID, windowID),
		logger:          c.logger,
	}, nil
}

// navigateThroughProxy installs the auth-challenge interceptor on the startup
// page, navigates it to the initialization URL and removes the interceptor
// once Chrome has cached the credentials.
func (c *Coordinator) navigateThroughProxy(browserCtx context.Context, targets []*target.Info, taggedURL string, proxy *config.ProxyConfig) error {
	blank := findTargetByURL(targets, "about:blank")
	if blank == nil {
		return fmt.Errorf("startup page not found for proxy authentication")
	}

	pageCtx, cancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(blank.TargetID))
	defer cancel()

	if err := enableProxyAuth(pageCtx, proxy, c.logger); err != nil {
		return fmt.Errorf("enabling proxy auth interception: %w", err)
	}
	if err := chromedp.Run(pageCtx, chromedp.Navigate(taggedURL)); err != nil {
		return fmt.Errorf("navigating through authenticated proxy: %w", err)
	}
	if err := disableProxyAuth(pageCtx); err != nil {
		c.logger.Debug("failed to disable proxy auth interception", zap.Error(err))
	}
	return nil
}

// completeHandshake looks for the tagged initialization page among the
// targets and, when present, runs the marker race and locates the side panel.
// A nil, nil return means the initialization or side panel page has not
// appeared yet and the caller should reconnect and retry.
func (c *Coordinator) completeHandshake(browserCtx context.Context, targets []*target.Info, taggedURL string, cfg *config.BrowserConfig) (*Connection, error) {
	initTarget := findTargetByURL(targets, taggedURL)
	if initTarget == nil {
		return nil, nil
	}

	initCtx, initCancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(initTarget.TargetID))
	defer initCancel()

	windowID, err := c.waitForBrowserWindowID(initCtx, cfg)
	if err != nil {
		return nil, err
	}

	spURL := sidePanelURL(cfg.ExtensionID, windowID)
	targets, err = chromedp.Targets(browserCtx)
	if err != nil {
		return nil, err
	}
	spTarget := findTargetByURL(targets, spURL)
	if spTarget == nil {
		return nil, nil
	}

	if err := c.fixDownloadBehavior(browserCtx, spTarget.TargetID); err != nil {
		c.logger.Warn("failed to reset download behavior", zap.Error(err))
	}

	if cfg.Interactive {
		c.prompter.Success(windowID)
	}

	return &Connection{
		BrowserWindowID: windowID,
		browserCtx:      browserCtx,
		sidePanelURL:    spURL,
		logger:          c.logger,
	}, nil
}

// waitForBrowserWindowID runs the marker race on the initialization page. In
// interactive mode the recoverable outcomes (extension missing, not signed
// in) pause for the user and retry after reloading the page.
func (c *Coordinator) waitForBrowserWindowID(initCtx context.Context, cfg *config.BrowserConfig) (string, error) {
	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if !cfg.Interactive {
		return c.waitSilently(initCtx, timeout)
	}

	for {
		windowID, err := c.waitSilently(initCtx, timeout)
		if err == nil {
			return windowID, nil
		}

		var missing *schemas.ExtensionMissingError
		var unauthed *schemas.ExtensionUnauthenticatedError
		switch {
		case errors.As(err, &missing):
			if promptErr := c.prompter.ExtensionMissing(); promptErr != nil {
				return "", err
			}
		case errors.As(err, &unauthed):
			if promptErr := c.prompter.ExtensionUnauthenticated(); promptErr != nil {
				return "", err
			}
		default:
			return "", err
		}

		// The page must be the active tab for the side panel to open
		// automatically after the reload.
		reloadErr := chromedp.Run(initCtx,
			page.BringToFront(),
			chromedp.Sleep(100*time.Millisecond),
			chromedp.Reload(),
		)
		if reloadErr != nil {
			// The console prompter ends the process here; for any other
			// prompter the typed error is the final answer.
			c.prompter.PageClosed()
			return "", &schemas.InitializationError{Message: "initialization page was closed"}
		}
	}
}

// waitSilently races the result markers once and maps the winner.
func (c *Coordinator) waitSilently(initCtx context.Context, timeout time.Duration) (string, error) {
	waitFor := func(selector string) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			return chromedp.Run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
		}
	}
	waits := []markerWait{
		{Outcome: OutcomeReady, Wait: waitFor(markerBrowserWindowID)},
		{Outcome: OutcomeUnsupportedBrowser, Wait: waitFor(markerUnsupportedBrowser)},
		{Outcome: OutcomeExtensionMissing, Wait: waitFor(markerExtensionMissing)},
		{Outcome: OutcomeExtensionUnauthenticated, Wait: waitFor(markerExtensionUnauthedState)},
		{Outcome: OutcomeInitializationError, Wait: waitFor(markerInitializationError)},
	}

	outcome, err := raceMarkers(initCtx, timeout, waits)
	if err != nil {
		return "", err
	}
	if outcome != OutcomeReady {
		return "", outcomeError(outcome)
	}

	var windowID string
	if err := chromedp.Run(initCtx, chromedp.Text(markerBrowserWindowID, &windowID, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading browser window ID: %w", err)
	}
	windowID = strings.TrimSpace(windowID)
	if windowID == "" {
		return "", &schemas.InitializationError{Message: "browser window ID is empty"}
	}

	c.logger.Debug("handshake complete", zap.String("browser_window_id", windowID))
	return windowID, nil
}

// fixDownloadBehavior reverts the side panel target's download behavior to
// the browser default. Attaching over DevTools flips it to deny, which would
// break the extension's own file downloads.
func (c *Coordinator) fixDownloadBehavior(browserCtx context.Context, id target.ID) error {
	spCtx, cancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(id))
	defer cancel()
	return chromedp.Run(spCtx, cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorDefault))
}

// findTargetByURL returns the first target whose URL matches exactly.
func findTargetByURL(targets []*target.Info, url string) *target.Info {
	for _, t := range targets {
		if t.URL == url {
			return t
		}
	}
	return nil
}

// locateTarget polls the target list for a URL match.
func locateTarget(browserCtx context.Context, url string, attempts int, delay time.Duration) (*target.Info, error) {
	for attempt := 0; attempt < attempts; attempt++ {
		targets, err := chromedp.Targets(browserCtx)
		if err != nil {
			return nil, err
		}
		if info := findTargetByURL(targets, url); info != nil {
			return info, nil
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-browserCtx.Done():
			return nil, browserCtx.Err()
		case <-time.After(delay):
		}
	}
	return nil, &schemas.TimeoutError{Message: "timed out waiting for page " + url}
}

// locateFirstPage returns the first page-type target.
func locateFirstPage(browserCtx context.Context) (*target.Info, error) {
	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if t.Type == "page" {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no page targets")
}
