// Package browser runs the shared headless Chrome instance behind job
// posting fetches and PDF rendering. One browser process serves the whole
// binary; callers contend for a small permit pool and each fetch gets an
// isolated tab.
package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/interviewbot/jobscout/internal/ingest"
)

const (
	// DefaultPoolSize is the number of fetches the shared browser serves
	// concurrently.
	DefaultPoolSize = 3

	defaultQueueTimeout = 60 * time.Second
	defaultFetchTimeout = 30 * time.Second

	networkIdleWindow  = 5 * time.Second
	networkIdlePoll    = 100 * time.Millisecond
	settleDelay        = time.Second
	spaSelectorTimeout = 10 * time.Second
	screenshotTimeout  = 10 * time.Second

	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	viewportWidth  = 1280
	viewportHeight = 800
)

// Errors the caller is expected to branch on.
var (
	// ErrQueueTimeout reports that no permit freed up within the queue
	// timeout. It is a capacity condition, not a fetch failure.
	ErrQueueTimeout = errors.New("browser pool queue timeout")
	// ErrClosed reports use after Close.
	ErrClosed = errors.New("browser manager closed")
)

// Manager owns the shared Chrome process. It launches lazily on first use
// and relaunches after a detected crash; the mutex makes the launch
// single-flight so concurrent callers await the same browser.
type Manager struct {
	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	closed        bool

	sem          chan struct{}
	queueTimeout time.Duration
	fetchTimeout time.Duration

	validator ingest.URLValidator
	logger    *zap.Logger

	// launch is swapped in tests; production launches Chrome.
	launch func() (context.Context, context.CancelFunc, context.CancelFunc, error)
}

// Option tweaks a Manager. Defaults match production.
type Option func(*Manager)

// WithPoolSize overrides the permit pool size.
func WithPoolSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.sem = make(chan struct{}, n)
		}
	}
}

// WithQueueTimeout overrides how long callers wait for a permit.
func WithQueueTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.queueTimeout = d
		}
	}
}

// New builds a Manager. The browser process itself is not launched until
// the first fetch needs it.
func New(validator ingest.URLValidator, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		sem:          make(chan struct{}, DefaultPoolSize),
		queueTimeout: defaultQueueTimeout,
		fetchTimeout: defaultFetchTimeout,
		validator:    validator,
		logger:       logger,
	}
	m.launch = m.launchBrowser
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Close tears down the browser process. In-flight fetches see their tab
// contexts cancelled.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.teardownLocked()
}

func (m *Manager) teardownLocked() {
	if m.browserCancel != nil {
		m.browserCancel()
		m.browserCancel = nil
	}
	if m.allocCancel != nil {
		m.allocCancel()
		m.allocCancel = nil
	}
	m.browserCtx = nil
}

// Fetch renders the URL in an isolated tab and returns the document HTML
// with qualifying iframe content inlined. A crash of the shared browser is
// retried exactly once with a fresh process.
func (m *Manager) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*ingest.FetchResult, error) {
	if timeout <= 0 {
		timeout = m.fetchTimeout
	}

	release, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	var result *ingest.FetchResult
	err = m.withCrashRetry(ctx, "fetch", func(browserCtx context.Context) error {
		var ferr error
		result, ferr = m.fetchOnce(ctx, browserCtx, rawURL, timeout)
		return ferr
	})
	if err != nil {
		fetchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	result.Duration = time.Since(start)
	fetchesTotal.WithLabelValues("ok").Inc()
	fetchDuration.Observe(result.Duration.Seconds())
	return result, nil
}

// acquire blocks for a permit up to the queue timeout.
func (m *Manager) acquire(ctx context.Context) (func(), error) {
	select {
	case m.sem <- struct{}{}:
		return func() { <-m.sem }, nil
	default:
	}

	timer := time.NewTimer(m.queueTimeout)
	defer timer.Stop()
	select {
	case m.sem <- struct{}{}:
		return func() { <-m.sem }, nil
	case <-timer.C:
		queueTimeoutsTotal.Inc()
		return nil, ErrQueueTimeout
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire browser permit: %w", ctx.Err())
	}
}

// withCrashRetry runs fn against the shared browser, relaunching and
// retrying exactly once when fn fails with a crash-class error.
func (m *Manager) withCrashRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	browserCtx, err := m.ensureBrowser()
	if err != nil {
		return err
	}
	err = fn(browserCtx)
	if err == nil || !isCrash(err) {
		return err
	}

	m.logger.Warn("browser crashed, relaunching",
		zap.String("op", op), zap.Error(err))
	relaunchesTotal.Inc()
	m.discard(browserCtx)

	browserCtx, err = m.ensureBrowser()
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fn(browserCtx)
}

// isCrash reports whether the error indicates the shared browser process
// died underneath the tab.
func isCrash(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "target closed") ||
		strings.Contains(msg, "browser closed")
}

// ensureBrowser returns a live browser context, launching one if needed.
// Callers racing on first use serialize on the mutex and share the launch.
func (m *Manager) ensureBrowser() (context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.browserCtx != nil && m.browserCtx.Err() == nil {
		return m.browserCtx, nil
	}
	m.teardownLocked()

	browserCtx, browserCancel, allocCancel, err := m.launch()
	if err != nil {
		return nil, err
	}
	m.browserCtx = browserCtx
	m.browserCancel = browserCancel
	m.allocCancel = allocCancel
	m.logger.Info("browser launched")
	return m.browserCtx, nil
}

func (m *Manager) launchBrowser() (context.Context, context.CancelFunc, context.CancelFunc, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("lang", "ko-KR"),
		chromedp.UserAgent(desktopUserAgent),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, nil, nil, fmt.Errorf("launch browser: %w", err)
	}
	return browserCtx, browserCancel, allocCancel, nil
}

// discard drops the crashed browser handle so the next ensureBrowser
// launches fresh. A concurrent relaunch that already replaced the handle
// is left alone.
func (m *Manager) discard(crashed context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browserCtx == crashed {
		m.teardownLocked()
	}
}

func (m *Manager) fetchOnce(ctx context.Context, browserCtx context.Context, rawURL string, timeout time.Duration) (*ingest.FetchResult, error) {
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, timeout)
	defer cancelTask()
	stop := forwardCancel(ctx, cancelTask)
	defer stop()

	tracker := newNetworkTracker()
	dclFired := make(chan struct{}, 1)
	m.listen(tabCtx, tracker, dclFired)

	if err := chromedp.Run(taskCtx,
		network.Enable(),
		fetch.Enable(),
		emulation.SetUserAgentOverride(desktopUserAgent).WithAcceptLanguage("ko-KR,ko;q=0.9"),
		emulation.SetDeviceMetricsOverride(viewportWidth, viewportHeight, 1.0, false),
		chromedp.ActionFunc(func(cctx context.Context) error {
			tracker.navStarted.Store(true)
			_, _, errText, _, err := page.Navigate(rawURL).Do(cctx)
			if err != nil {
				return err
			}
			if errText != "" {
				return fmt.Errorf("navigate %s: %s", rawURL, errText)
			}
			return nil
		}),
	); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}

	select {
	case <-dclFired:
	case <-taskCtx.Done():
		return nil, fmt.Errorf("wait domcontentloaded: %w", taskCtx.Err())
	}

	// Best effort. Korean job boards keep analytics sockets open, so a
	// page that never goes idle is still worth extracting.
	waitNetworkIdle(taskCtx, tracker, networkIdleWindow)
	sleepCtx(taskCtx, settleDelay)
	m.waitSPASelectors(taskCtx, rawURL)

	var html string
	if err := chromedp.Run(taskCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("extract html: %w", err)
	}

	frames, err := m.collectFrames(taskCtx, tracker.finalURL(rawURL))
	if err != nil {
		m.logger.Debug("frame collection failed", zap.String("url", rawURL), zap.Error(err))
		frames = nil
	}

	result := &ingest.FetchResult{
		URL:      rawURL,
		FinalURL: tracker.finalURL(rawURL),
		HTML:     inlineFrames(html, frames),
	}

	if shot, ok := m.maybeScreenshot(taskCtx, frames); ok {
		result.Screenshots = append(result.Screenshots, shot)
	}
	return result, nil
}

// listen installs the tab-wide CDP event handler: sub-request SSRF
// gating, inflight request accounting, and final URL capture.
func (m *Manager) listen(tabCtx context.Context, tracker *networkTracker, dclFired chan struct{}) {
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *fetch.EventRequestPaused:
			go m.resolvePaused(tabCtx, e)
		case *network.EventRequestWillBeSent:
			tracker.begin(string(e.RequestID))
		case *network.EventLoadingFinished:
			tracker.end(string(e.RequestID))
		case *network.EventLoadingFailed:
			tracker.end(string(e.RequestID))
		case *network.EventResponseReceived:
			if e.Type == network.ResourceTypeDocument {
				tracker.setFinalURL(e.Response.URL)
			}
		case *page.EventDomContentEventFired:
			// The fresh tab fires one for its initial about:blank; only
			// the post-navigation event counts.
			if tracker.navStarted.Load() {
				select {
				case dclFired <- struct{}{}:
				default:
				}
			}
		}
	})
}

// resolvePaused continues or aborts an intercepted sub-request. Unsafe
// targets are aborted at the network layer; the page never sees them.
func (m *Manager) resolvePaused(tabCtx context.Context, ev *fetch.EventRequestPaused) {
	c := chromedp.FromContext(tabCtx)
	if c == nil {
		return
	}
	execCtx := cdp.WithExecutor(tabCtx, c.Target)

	if m.validator != nil && !m.validator.IsSafe(ev.Request.URL) {
		blockedSubrequestsTotal.Inc()
		m.logger.Debug("blocked unsafe sub-request", zap.String("url", ev.Request.URL))
		if err := fetch.FailRequest(ev.RequestID, network.ErrorReasonAccessDenied).Do(execCtx); err != nil {
			m.logger.Debug("abort sub-request", zap.Error(err))
		}
		return
	}
	if err := fetch.ContinueRequest(ev.RequestID).Do(execCtx); err != nil {
		m.logger.Debug("continue sub-request", zap.Error(err))
	}
}

// waitSPASelectors blocks on the detail-panel selectors for SPA boards
// that render the posting client side. Missing selectors are not an
// error; extraction proceeds with whatever rendered.
func (m *Manager) waitSPASelectors(taskCtx context.Context, rawURL string) {
	selector, ok := spaContentSelector(rawURL)
	if !ok {
		return
	}
	waitCtx, cancel := context.WithTimeout(taskCtx, spaSelectorTimeout)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		m.logger.Debug("spa selector never appeared",
			zap.String("url", rawURL), zap.String("selector", selector))
	}
}

// collectFrames walks the pierced DOM and returns content frames with
// their document HTML.
func (m *Manager) collectFrames(taskCtx context.Context, topURL string) ([]frameContent, error) {
	var frames []frameContent
	err := chromedp.Run(taskCtx, chromedp.ActionFunc(func(cctx context.Context) error {
		root, err := dom.GetDocument().WithDepth(-1).WithPierce(true).Do(cctx)
		if err != nil {
			return err
		}
		seq := 0
		var walk func(n *cdp.Node)
		walk = func(n *cdp.Node) {
			if n == nil {
				return
			}
			if n.NodeName == "IFRAME" && n.ContentDocument != nil {
				info := frameInfo{
					URL:  n.ContentDocument.DocumentURL,
					Name: nodeAttr(n, "name", "id"),
					Seq:  seq,
				}
				seq++
				if isContentFrame(info, topURL) {
					html, herr := dom.GetOuterHTML().
						WithBackendNodeID(n.ContentDocument.BackendNodeID).Do(cctx)
					if herr == nil && len(html) > minFrameHTMLChars {
						frames = append(frames, frameContent{URL: info.URL, HTML: html})
					}
				}
			}
			for _, child := range n.Children {
				walk(child)
			}
			if n.ContentDocument != nil {
				for _, child := range n.ContentDocument.Children {
					walk(child)
				}
			}
		}
		walk(root)
		return nil
	}))
	return frames, err
}

// maybeScreenshot captures one full-page screenshot when the frame layout
// says the posting is an image, not text. Failures are logged and
// swallowed; the HTML result stands on its own.
func (m *Manager) maybeScreenshot(taskCtx context.Context, frames []frameContent) (ingest.Screenshot, bool) {
	if !wantsScreenshot(frames) {
		return ingest.Screenshot{}, false
	}
	shotCtx, cancel := context.WithTimeout(taskCtx, screenshotTimeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(shotCtx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		m.logger.Warn("full page screenshot failed", zap.Error(err))
		return ingest.Screenshot{}, false
	}
	screenshotsTotal.Inc()
	return ingest.Screenshot{
		DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf),
		Source:  "fullpage",
	}, true
}

// networkTracker counts inflight requests for the idle wait and records
// the final document URL across redirects.
type networkTracker struct {
	mu         sync.Mutex
	inflight   map[string]struct{}
	docURL     string
	navStarted atomic.Bool
}

func newNetworkTracker() *networkTracker {
	return &networkTracker{inflight: make(map[string]struct{})}
}

func (t *networkTracker) begin(id string) {
	t.mu.Lock()
	t.inflight[id] = struct{}{}
	t.mu.Unlock()
}

func (t *networkTracker) end(id string) {
	t.mu.Lock()
	delete(t.inflight, id)
	t.mu.Unlock()
}

func (t *networkTracker) idle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0
}

func (t *networkTracker) setFinalURL(u string) {
	t.mu.Lock()
	t.docURL = u
	t.mu.Unlock()
}

func (t *networkTracker) finalURL(fallback string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.docURL == "" {
		return fallback
	}
	return t.docURL
}

func waitNetworkIdle(ctx context.Context, tracker *networkTracker, window time.Duration) {
	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		if tracker.idle() {
			return
		}
		if !sleepCtx(ctx, networkIdlePoll) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
