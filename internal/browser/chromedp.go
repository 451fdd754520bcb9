package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Chrome is a Browser backed by a headless Chrome process via chromedp.
// Each session gets its own tab; the process is shared.
type Chrome struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewChrome prepares a headless Chrome allocator. The browser process itself
// is launched lazily by the first session.
func NewChrome(parent context.Context) *Chrome {
	allocCtx, cancel := chromedp.NewExecAllocator(parent, chromedp.DefaultExecAllocatorOptions[:]...)
	return &Chrome{allocCtx: allocCtx, cancel: cancel}
}

// NewSession opens a fresh tab and verifies the browser is reachable.
func (c *Chrome) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, cancel := chromedp.NewContext(c.allocCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start browser session: %w", err)
	}
	return &chromeSession{ctx: tabCtx, cancel: cancel}, nil
}

// Close shuts down the browser process and all sessions.
func (c *Chrome) Close() error {
	c.cancel()
	return nil
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.ctx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) WaitLoaded(ctx context.Context) error {
	return s.run(ctx, chromedp.WaitReady("body", chromedp.ByQuery))
}

func (s *chromeSession) Fill(ctx context.Context, field Field, value string) error {
	sel, opt := fieldSelector(field)
	return s.run(ctx,
		chromedp.WaitVisible(sel, opt),
		chromedp.Clear(sel, opt),
		chromedp.SendKeys(sel, value, opt),
	)
}

func (s *chromeSession) Click(ctx context.Context, field Field) error {
	sel, opt := fieldSelector(field)
	return s.run(ctx,
		chromedp.WaitVisible(sel, opt),
		chromedp.Click(sel, opt),
	)
}

func (s *chromeSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(tctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

func (s *chromeSession) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (s *chromeSession) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// fieldSelector maps an accessible role/name pair onto a DOM query. Text
// inputs on the portal take their accessible name from the placeholder;
// buttons from their visible text or value.
func fieldSelector(f Field) (string, chromedp.QueryOption) {
	switch f.Role {
	case RoleButton:
		return fmt.Sprintf(
			`//button[normalize-space(.)=%q] | //input[(@type="submit" or @type="button") and @value=%q]`,
			f.Name, f.Name,
		), chromedp.BySearch
	default:
		return fmt.Sprintf(`input[placeholder=%q], textarea[placeholder=%q]`, f.Name, f.Name), chromedp.ByQuery
	}
}
