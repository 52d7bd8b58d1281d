package fatal

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dispatchkit/dispatchkit/fault"
)

// Defaults applied when Options fields are zero.
const (
	DefaultTimeout = 5 * time.Second
	DefaultCode    = 1
)

// Options configures a Handler.
type Options struct {
	// Timeout bounds the whole hook sequence. Hooks still running when it
	// elapses are abandoned and the process exits anyway. Default 5s.
	Timeout time.Duration

	// Code is the process exit code. Default 1.
	Code int

	// ExitFunc replaces os.Exit, for tests.
	ExitFunc func(int)

	// Logger replaces slog.Default().
	Logger *slog.Logger
}

// Handler owns the shutdown sequence. Register cleanup with OnShutdown
// during startup; call Exit from the point of no return.
type Handler struct {
	timeout time.Duration
	code    int
	exit    func(int)
	log     *slog.Logger

	mu    sync.Mutex
	hooks []hook
	once  sync.Once
}

type hook struct {
	name string
	run  func(context.Context) error
}

// New creates a Handler.
func New(opts Options) *Handler {
	h := &Handler{
		timeout: opts.Timeout,
		code:    opts.Code,
		exit:    opts.ExitFunc,
		log:     opts.Logger,
	}
	if h.timeout <= 0 {
		h.timeout = DefaultTimeout
	}
	if h.code == 0 {
		h.code = DefaultCode
	}
	if h.exit == nil {
		h.exit = os.Exit
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	return h
}

// OnShutdown registers a cleanup hook. Hooks run in reverse registration
// order, mirroring startup: what came up last goes down first.
func (h *Handler) OnShutdown(name string, fn func(context.Context) error) {
	h.mu.Lock()
	h.hooks = append(h.hooks, hook{name: name, run: fn})
	h.mu.Unlock()
}

// Exit logs cause, runs the registered hooks LIFO under the shared deadline,
// and terminates the process with the configured code. Only the first call
// runs the sequence; a fatal raised while shutdown is already in progress is
// logged and otherwise ignored.
func (h *Handler) Exit(cause error) {
	ran := false
	h.once.Do(func() {
		ran = true
		h.run(cause)
	})
	if !ran {
		h.log.Error("fatal: raised during shutdown, ignoring", "cause", fault.Format(cause))
	}
}

func (h *Handler) run(cause error) {
	h.log.Error("fatal: shutting down", "cause", fault.Format(cause), "code", h.code)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]hook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hk := hooks[i]
		if ctx.Err() != nil {
			h.log.Error("fatal: shutdown deadline elapsed, abandoning remaining hooks",
				"remaining", i+1)
			break
		}
		if err := h.runHook(ctx, hk); err != nil {
			h.log.Error("fatal: shutdown hook failed", "hook", hk.name, "err", err)
		}
	}

	h.exit(h.code)
}

// runHook executes one hook in its own goroutine so a hung hook cannot
// outlive the shared deadline.
func (h *Handler) runHook(ctx context.Context, hk hook) error {
	done := make(chan error, 1)
	go func() { done <- hk.run(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
