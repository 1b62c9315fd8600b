package bridge

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InjectRetryDelays are the extra attempts after the first early
// injection. The page's readiness signal fires before the DOM is always
// usable.
var InjectRetryDelays = []time.Duration{10 * time.Millisecond, 50 * time.Millisecond, 100 * time.Millisecond}

// Evaluator runs script in the embedded page.
type Evaluator interface {
	Evaluate(ctx context.Context, script string) error
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// ChromeState reads the saved title and progress bar visibility.
type ChromeState interface {
	ChromeHidden() (bool, error)
}

// Lifecycle injects scripts into the page as it loads: early, with
// retries, and again once loading finishes.
type Lifecycle struct {
	eval   Evaluator
	sched  Scheduler
	chrome ChromeState
	log    *slog.Logger

	mu         sync.Mutex
	themeClass string
	css        string
	token      string
	generation uint64
}

type LifecycleOption func(*Lifecycle)

func WithScheduler(s Scheduler) LifecycleOption {
	return func(l *Lifecycle) { l.sched = s }
}

func WithThemeClass(class string) LifecycleOption {
	return func(l *Lifecycle) { l.themeClass = class }
}

func NewLifecycle(eval Evaluator, chrome ChromeState, logger *slog.Logger, opts ...LifecycleOption) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Lifecycle{
		eval:   eval,
		sched:  timeScheduler{},
		chrome: chrome,
		log:    logger.With("component", "bridge"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetCustomStyles sets the CSS installed on the next page load.
func (l *Lifecycle) SetCustomStyles(css string) {
	l.mu.Lock()
	l.css = css
	l.mu.Unlock()
}

func (l *Lifecycle) SetThemeClass(class string) {
	l.mu.Lock()
	l.themeClass = class
	l.mu.Unlock()
}

func (l *Lifecycle) earlyScript() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return joinScripts(ThemeClassScript(l.themeClass), EntryPointsScript(l.token))
}

// PageStarted injects the theme class and the entry points as soon as the
// page starts loading, then repeats the injection on InjectRetryDelays.
// Retries left over from a previous page are dropped.
func (l *Lifecycle) PageStarted(ctx context.Context, url string) {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.token = uuid.NewString()
	l.mu.Unlock()

	script := l.earlyScript()
	l.evaluate(ctx, "page started", url, script)
	for _, d := range InjectRetryDelays {
		d := d
		l.sched.AfterFunc(d, func() {
			if !l.current(gen) || ctx.Err() != nil {
				return
			}
			l.evaluate(ctx, "page started retry", url, script)
		})
	}
}

// PageFinished re-applies the early injection, since scripts on the page
// may have rebuilt the DOM, and installs the custom styles and saved chrome
// state.
func (l *Lifecycle) PageFinished(ctx context.Context, url string) {
	l.mu.Lock()
	css := l.css
	l.mu.Unlock()

	hidden := false
	if l.chrome != nil {
		var err error
		if hidden, err = l.chrome.ChromeHidden(); err != nil {
			l.log.WarnContext(ctx, "chrome state unavailable", "error", err)
		}
	}

	scripts := []string{l.earlyScript()}
	if css != "" {
		scripts = append(scripts, InjectCSSScript(css))
	}
	scripts = append(scripts, ChromeStateScript(hidden))
	l.evaluate(ctx, "page finished", url, joinScripts(scripts...))
}

func (l *Lifecycle) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation == gen
}

func (l *Lifecycle) evaluate(ctx context.Context, stage, url, script string) {
	if script == "" {
		return
	}
	if err := l.eval.Evaluate(ctx, script); err != nil {
		l.log.WarnContext(ctx, "script injection failed", "stage", stage, "url", url, "error", err)
	}
}
