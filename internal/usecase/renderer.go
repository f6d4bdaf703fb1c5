// Package usecase turns one (url, token) pair into PDF bytes using a
// browser obtained from the process-wide manager.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"resume-pdf-service/internal/config"
	"resume-pdf-service/internal/domain"
)

// A4 geometry in inches; margins are 5mm.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	marginInches   = 0.197
)

// BrowserAcquirer hands out live browser contexts and disposes unhealthy
// ones. Satisfied by browser.Manager.
type BrowserAcquirer interface {
	Acquire(ctx context.Context) (context.Context, error)
	Discard()
}

// Renderer drives one render: tab, auth cookie, interception, navigation,
// print overrides, rasterization. Each call owns its tab exclusively and
// closes it on every exit path.
type Renderer struct {
	browsers BrowserAcquirer
	cfg      config.Config
	style    *PageStyle
	blocked  map[network.ResourceType]bool

	// runTab executes the in-tab pipeline. A field so tests can inject
	// failures that occur after tab creation.
	runTab func(browserCtx context.Context, req domain.RenderRequest, host string) ([]byte, error)
}

func NewRenderer(browsers BrowserAcquirer, cfg config.Config, style *PageStyle) *Renderer {
	if style == nil {
		style = DefaultPageStyle()
	}
	r := &Renderer{
		browsers: browsers,
		cfg:      cfg,
		style:    style,
		// Sub-resources that do not affect textual PDF fidelity; aborting
		// them bounds navigation latency.
		blocked: map[network.ResourceType]bool{
			network.ResourceTypeImage:      true,
			network.ResourceTypeStylesheet: true,
			network.ResourceTypeFont:       true,
			network.ResourceTypeMedia:      true,
		},
	}
	r.runTab = r.renderInTab
	return r
}

// Render produces PDF bytes for a resume preview page, or a classified
// failure. Validation happens before any browser work; connection-level
// failures additionally discard the shared browser so the next request
// relaunches it.
func (r *Renderer) Render(ctx context.Context, req domain.RenderRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	host, err := req.CookieHost()
	if err != nil {
		return nil, err
	}

	browserCtx, err := r.browsers.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if browserCtx.Err() != nil {
		r.browsers.Discard()
		return nil, fmt.Errorf("%w: %v", domain.ErrBrowserUnavailable, browserCtx.Err())
	}

	pdf, err := r.runTab(browserCtx, req, host)
	if err != nil {
		if errors.Is(err, domain.ErrConnectionLost) {
			r.browsers.Discard()
		}
		return nil, err
	}
	return pdf, nil
}

// renderInTab runs the per-request pipeline in a fresh tab. The deferred
// cancel closes the tab on success and on every failure path; close errors
// on a dead tab are swallowed by chromedp.
func (r *Renderer) renderInTab(browserCtx context.Context, req domain.RenderRequest, host string) ([]byte, error) {
	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer closeTab()

	r.interceptRequests(tabCtx)

	navCtx, cancelNav := context.WithTimeout(tabCtx, r.cfg.NavigationTimeout)
	defer cancelNav()
	err := chromedp.Run(navCtx,
		emulation.SetUserAgentOverride(r.cfg.UserAgent),
		setSessionCookie(r.cfg.CookieName, req.SessionToken, host),
		fetch.Enable(),
		navigateDOMContentLoaded(req.TargetURL),
	)
	if err != nil {
		return nil, classify(err, domain.ErrNavigation, req.TargetURL)
	}

	// The protocol timeout bounds every post-navigation CDP call; a wedged
	// renderer that stops answering must not hang the handler or leak the
	// tab.
	rasterCtx, cancelRaster := context.WithTimeout(tabCtx, r.cfg.ProtocolTimeout)
	defer cancelRaster()
	var pdf []byte
	err = chromedp.Run(rasterCtx,
		chromedp.Evaluate(r.style.InjectCSSScript(), nil),
		chromedp.Evaluate(r.style.CleanupScript(), nil),
		chromedp.Sleep(r.cfg.SettleDelay),
		r.printToPDF(&pdf),
	)
	if err != nil {
		return nil, classify(err, domain.ErrRasterization, req.TargetURL)
	}
	return pdf, nil
}

// classify wraps err with the page-local sentinel unless it carries a
// connection-level signature, which escalates to ErrConnectionLost.
func classify(err error, pageLocal error, targetURL string) error {
	if domain.IsConnectionError(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrConnectionLost, targetURL, err)
	}
	return fmt.Errorf("%w: %s: %v", pageLocal, targetURL, err)
}

// interceptRequests aborts blocked sub-resource types and continues the
// rest. The decision is synchronous; the CDP reply is dispatched off the
// event goroutine because listeners must not block.
func (r *Renderer) interceptRequests(tabCtx context.Context) {
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		abort := r.blocked[paused.ResourceType]
		go func() {
			c := chromedp.FromContext(tabCtx)
			ectx := cdp.WithExecutor(tabCtx, c.Target)
			var err error
			if abort {
				err = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(ectx)
			} else {
				err = fetch.ContinueRequest(paused.RequestID).Do(ectx)
			}
			if err != nil && tabCtx.Err() == nil {
				log.Printf("warning: intercept reply failed for %s: %v", paused.Request.URL, err)
			}
		}()
	})
}

// sessionCookieParams builds the cookie the target page's auth check
// reads, scoped to the deployment host and root path. No expiry: the
// frontend's own cookie is session-scoped.
func sessionCookieParams(name, value, host string) *network.SetCookieParams {
	return network.SetCookie(name, value).
		WithDomain(host).
		WithPath("/")
}

// setSessionCookie injects the opaque session token into the tab.
func setSessionCookie(name, value, host string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		return sessionCookieParams(name, value, host).Do(ctx)
	}
}

// navigateDOMContentLoaded navigates and returns once DOMContentLoaded
// fires. Waiting for full network idle is deliberately avoided: long-poll
// and analytics connections on the preview page would starve it.
func navigateDOMContentLoaded(urlstr string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		done := make(chan struct{})
		lctx, cancel := context.WithCancel(ctx)
		chromedp.ListenTarget(lctx, func(ev interface{}) {
			if _, ok := ev.(*page.EventDomContentEventFired); ok {
				cancel()
				close(done)
			}
		})

		_, _, errText, _, err := page.Navigate(urlstr).Do(ctx)
		if err != nil {
			cancel()
			return err
		}
		if errText != "" {
			cancel()
			return errors.New(errText)
		}

		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// printToPDF rasterizes the settled page. Explicit format and margins win
// over any @page size on the target (preferCSSPageSize off); the 0.9 scale
// fills the page width better than the default.
func (r *Renderer) printToPDF(res *[]byte) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		buf, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(a4WidthInches).
			WithPaperHeight(a4HeightInches).
			WithMarginTop(marginInches).
			WithMarginBottom(marginInches).
			WithMarginLeft(marginInches).
			WithMarginRight(marginInches).
			WithScale(r.cfg.PDFScale).
			WithPreferCSSPageSize(false).
			Do(ctx)
		if err != nil {
			return err
		}
		*res = buf
		return nil
	}
}
