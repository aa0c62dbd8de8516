// internal/board/rod.go
//
// Browser board: drives the puzzle web page with go-rod.
// Responsibilities:
//   - Launch (or attach to) one Chrome instance, reused across puzzles.
//   - Open a puzzle page and map word tiles to their buttons.
//   - Submit a group by clicking its four tiles and "Submit", then read the
//     verdict from the page (one-away toast, or the solved-groups count).
//
// Notes:
//   - Selectors follow the current site markup; they are constants below.
//   - Clicks are spaced by ClickDelay; the page animates between states.

package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections-bot/internal/game"
)

const (
	DefaultURLPrefix = "https://connections.swellgarfo.com/nyt/"

	wordsParentClassPrefix = "HomePage_words-wrap"
	correctGroupsXPath     = `//div[contains(@class, 'HomePage_correct-answers-wrap')]`
	toastXPath             = `//div[contains(@class, 'Toastify')]`
	submitTextRegex        = `^\s*Submit\s*$`
	clearTextRegex         = `^\s*(Clear|Deselect all)\s*$`
	shuffleTextRegex       = `^\s*Shuffle\s*$`
)

// BrowserConfig configures the browser and page timings.
type BrowserConfig struct {
	ControlURL  string        // attach to a running browser instead of launching
	Headless    bool          // launch without a window
	URLPrefix   string        // puzzle id is appended
	PageTimeout time.Duration // navigation and element lookup bound
	ClickDelay  time.Duration // pause after each click
	ToastPoll   time.Duration // poll interval while the one-away toast is shown
}

// DefaultBrowserConfig returns the standard timings.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:    true,
		URLPrefix:   DefaultURLPrefix,
		PageTimeout: 30 * time.Second,
		ClickDelay:  300 * time.Millisecond,
		ToastPoll:   500 * time.Millisecond,
	}
}

// Browser is a long-lived browser handle; each puzzle gets its own page.
type Browser struct {
	cfg      BrowserConfig
	browser  *rod.Browser
	launcher *launcher.Launcher
	log      zerolog.Logger
}

// Launch starts (or attaches to) Chrome.
func Launch(ctx context.Context, cfg BrowserConfig) (*Browser, error) {
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = DefaultURLPrefix
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = DefaultBrowserConfig().PageTimeout
	}
	b := &Browser{cfg: cfg, log: log.Logger}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		b.launcher = launcher.New().Headless(cfg.Headless)
		u, err := b.launcher.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}
	b.browser = rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.browser.Connect(); err != nil {
		b.cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	b.log.Info().Str("control_url", controlURL).Bool("headless", cfg.Headless).Msg("browser connected")
	return b, nil
}

// Close shuts the browser down.
func (b *Browser) Close() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	b.cleanup()
	return err
}

func (b *Browser) cleanup() {
	if b.launcher != nil {
		b.launcher.Cleanup()
	}
}

// URL returns the page address of a puzzle.
func (b *Browser) URL(id int) string {
	return fmt.Sprintf("%s%d", b.cfg.URLPrefix, id)
}

// Open navigates a new page to the puzzle and indexes its word tiles.
func (b *Browser) Open(ctx context.Context, id int) (*Rod, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: b.URL(id)})
	if err != nil {
		return nil, fmt.Errorf("open puzzle %d: %w", id, err)
	}
	r := &Rod{cfg: b.cfg, page: page, log: b.log.With().Int("puzzle", id).Logger()}
	if err := page.Context(ctx).Timeout(b.cfg.PageTimeout).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("wait load: %w", err)
	}
	if _, err := r.RemainingWords(ctx); err != nil {
		_ = page.Close()
		return nil, err
	}
	return r, nil
}

// Rod is a Board bound to one open puzzle page.
type Rod struct {
	cfg     BrowserConfig
	page    *rod.Page
	buttons map[game.Word]*rod.Element
	log     zerolog.Logger
}

// Close closes the page.
func (r *Rod) Close() error { return r.page.Close() }

func (r *Rod) p(ctx context.Context) *rod.Page {
	return r.page.Context(ctx).Timeout(r.cfg.PageTimeout)
}

// RemainingWords implements Board. It re-reads the tiles and refreshes the
// word-to-button index.
func (r *Rod) RemainingWords(ctx context.Context) (game.WordSet, error) {
	buttons, err := r.p(ctx).Elements("button")
	if err != nil {
		return nil, fmt.Errorf("find buttons: %w", err)
	}
	words := game.NewWordSet()
	index := make(map[game.Word]*rod.Element, len(buttons))
	for _, btn := range buttons {
		if !isWordTile(btn) {
			continue
		}
		text, err := btn.Text()
		if err != nil {
			continue
		}
		w := game.Normalize(text)
		if w == "" {
			continue
		}
		words[w] = struct{}{}
		index[w] = btn
	}
	r.buttons = index
	return words, nil
}

// isWordTile reports whether a button sits in the word grid.
func isWordTile(btn *rod.Element) bool {
	parent, err := btn.Parent()
	if err != nil {
		return false
	}
	class, err := parent.Attribute("class")
	if err != nil || class == nil {
		return false
	}
	return strings.HasPrefix(*class, wordsParentClassPrefix)
}

// AttemptGroup implements Board.
func (r *Rod) AttemptGroup(ctx context.Context, words game.WordSet) (game.Outcome, error) {
	if words.Len() != game.GroupSize {
		return 0, fmt.Errorf("%w: got %d", ErrGroupSize, words.Len())
	}
	before, err := r.correctGroups(ctx)
	if err != nil {
		return 0, err
	}
	for _, w := range words.Sorted() {
		btn, ok := r.buttons[w]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownWord, w)
		}
		if err := btn.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
			return 0, fmt.Errorf("click %s: %w", w, err)
		}
		if err := pause(ctx, r.cfg.ClickDelay); err != nil {
			return 0, err
		}
	}
	if err := r.clickText(ctx, submitTextRegex); err != nil {
		return 0, fmt.Errorf("submit: %w", err)
	}
	if err := pause(ctx, r.cfg.ClickDelay); err != nil {
		return 0, err
	}

	oneAway, err := r.waitOneAwayToast(ctx)
	if err != nil {
		return 0, err
	}
	if oneAway {
		r.deselect(ctx)
		return game.OneAway, nil
	}
	after, err := r.correctGroups(ctx)
	if err != nil {
		return 0, err
	}
	if after > before {
		return game.Success, nil
	}
	r.deselect(ctx)
	return game.Failure, nil
}

// Shuffle implements Shuffler.
func (r *Rod) Shuffle(ctx context.Context) error {
	if err := r.clickText(ctx, shuffleTextRegex); err != nil {
		return fmt.Errorf("shuffle: %w", err)
	}
	if err := pause(ctx, r.cfg.ClickDelay); err != nil {
		return err
	}
	_, err := r.RemainingWords(ctx)
	return err
}

func (r *Rod) clickText(ctx context.Context, re string) error {
	btn, err := r.p(ctx).ElementR("button", re)
	if err != nil {
		return err
	}
	return btn.Click(proto.InputMouseButtonLeft, 1)
}

// deselect clears a rejected selection; the site keeps it selected.
func (r *Rod) deselect(ctx context.Context) {
	if err := r.clickText(ctx, clearTextRegex); err != nil {
		r.log.Debug().Err(err).Msg("clear selection")
	}
}

// correctGroups counts the solved groups shown above the grid.
func (r *Rod) correctGroups(ctx context.Context) (int, error) {
	wrap, err := r.p(ctx).ElementX(correctGroupsXPath)
	if err != nil {
		return 0, fmt.Errorf("find solved groups: %w", err)
	}
	children, err := wrap.ElementsX("./*")
	if err != nil {
		return 0, err
	}
	return len(children), nil
}

// waitOneAwayToast reports whether the one-away toast is showing and, if so,
// waits for it to go away.
func (r *Rod) waitOneAwayToast(ctx context.Context) (bool, error) {
	toast, err := r.p(ctx).ElementX(toastXPath)
	if err != nil {
		return false, fmt.Errorf("find toast: %w", err)
	}
	shown := func() bool {
		children, err := toast.ElementsX("./*")
		return err == nil && len(children) > 0
	}
	if !shown() {
		return false, nil
	}
	for shown() {
		if err := pause(ctx, r.cfg.ToastPoll); err != nil {
			return true, err
		}
	}
	return true, nil
}

// pause sleeps for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
