package browser

import (
	"context"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/NaradaAI/narada-go/internal/config"
)

// enableProxyAuth intercepts proxy auth challenges on the target so Chrome
// never shows its credentials dialog. Chrome caches the credentials for the
// session after the first successful authentication, so the interceptor only
// needs to live until the first navigation completes; call disableProxyAuth
// afterwards to stop pausing requests.
func enableProxyAuth(ctx context.Context, proxy *config.ProxyConfig, logger *zap.Logger) error {
	chromedp.ListenTarget(ctx, func(ev any) {
		execCtx := cdp.WithExecutor(ctx, chromedp.FromContext(ctx).Target)

		switch ev := ev.(type) {
		case *fetch.EventAuthRequired:
			if ev.AuthChallenge == nil || ev.AuthChallenge.Source != fetch.AuthChallengeSourceProxy {
				return
			}
			go func() {
				err := fetch.ContinueWithAuth(ev.RequestID, &fetch.AuthChallengeResponse{
					Response: fetch.AuthChallengeResponseResponseProvideCredentials,
					Username: proxy.Username,
					Password: proxy.Password,
				}).Do(execCtx)
				if err != nil {
					logger.Error("failed to answer proxy auth challenge", zap.Error(err))
					return
				}
				logger.Debug("proxy credentials provided")
			}()

		case *fetch.EventRequestPaused:
			// With the fetch domain enabled every request pauses; resume them
			// immediately, interception exists only for the auth challenge.
			go func() {
				if err := fetch.ContinueRequest(ev.RequestID).Do(execCtx); err != nil {
					logger.Debug("failed to continue paused request", zap.Error(err))
				}
			}()
		}
	})

	return chromedp.Run(ctx, fetch.Enable().
		WithHandleAuthRequests(true).
		WithPatterns([]*fetch.RequestPattern{{URLPattern: "*"}}))
}

// disableProxyAuth stops request interception on the target.
func disableProxyAuth(ctx context.Context) error {
	return chromedp.Run(ctx, fetch.Disable())
}
