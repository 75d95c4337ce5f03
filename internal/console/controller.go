// Package console implements the interactive menu: it reads an action
// token, runs the bound action and repeats until the operator quits, input
// ends, or the process is interrupted.
package console

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/atotto/clipboard"
	"github.com/yourusername/kube-console/internal/datasource"
	"github.com/yourusername/kube-console/internal/i18n"
	"github.com/yourusername/kube-console/internal/model"
	"github.com/yourusername/kube-console/internal/poller"
	"github.com/yourusername/kube-console/internal/prompt"
	"github.com/yourusername/kube-console/internal/query"
	"github.com/yourusername/kube-console/internal/restarts"
	"github.com/yourusername/kube-console/internal/ui"
	"go.uber.org/zap"
)

// Config holds the settings the menu actions need
type Config struct {
	NodeGroupLabel string
	ZoneLabel      string
	Interval       time.Duration
	TopInterval    time.Duration
	DefaultWindow  int
	LogTailLines   int
	CopyCommands   bool
}

func (c Config) withDefaults() Config {
	if c.NodeGroupLabel == "" {
		c.NodeGroupLabel = model.DefaultNodeGroupLabel
	}
	if c.ZoneLabel == "" {
		c.ZoneLabel = model.DefaultZoneLabel
	}
	if c.Interval <= 0 {
		c.Interval = poller.DefaultInterval
	}
	if c.TopInterval <= 0 {
		c.TopInterval = time.Second
	}
	if c.DefaultWindow <= 0 {
		c.DefaultWindow = restarts.DefaultWindow
	}
	if c.LogTailLines <= 0 {
		c.LogTailLines = query.DefaultLogTail
	}
	return c
}

// Controller is the main menu loop
type Controller struct {
	reader  datasource.ClusterReader
	usage   datasource.UsageSource
	out     ui.Output
	prompt  *prompt.Prompter
	loc     *i18n.Localizer
	logger  *zap.Logger
	cfg     Config
	copy    func(string) error
	cleanup func()
	now     func() time.Time

	actions map[Action]func(ctx context.Context) error
}

// Option configures a Controller
type Option func(*Controller)

// WithCleanup sets the function run when the loop ends
func WithCleanup(fn func()) Option {
	return func(c *Controller) {
		c.cleanup = fn
	}
}

// WithClipboard replaces the system clipboard writer
func WithClipboard(fn func(string) error) Option {
	return func(c *Controller) {
		c.copy = fn
	}
}

// WithClock replaces time.Now, used for the AGE columns
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New creates the menu controller. usage may be nil when no node usage
// source is reachable; the usage view then reports it as unavailable.
func New(reader datasource.ClusterReader, usage datasource.UsageSource, out ui.Output, in *prompt.LineReader,
	loc *i18n.Localizer, logger *zap.Logger, cfg Config, opts ...Option) *Controller {
	c := &Controller{
		reader: reader,
		usage:  usage,
		out:    out,
		prompt: prompt.New(in, out, loc, logger),
		loc:    loc,
		logger: logger,
		cfg:    cfg.withDefaults(),
		copy:   clipboard.WriteAll,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.actions = map[Action]func(ctx context.Context) error{
		ActionEvents:         c.watchEvents,
		ActionRestarts:       c.restartedContainers,
		ActionPods:           func(ctx context.Context) error { return c.watchPods(ctx, false) },
		ActionNonRunningPods: func(ctx context.Context) error { return c.watchPods(ctx, true) },
		ActionPodCounts:      c.watchPodCounts,
		ActionNodes:          func(ctx context.Context) error { return c.watchNodes(ctx, false) },
		ActionUnhealthyNodes: func(ctx context.Context) error { return c.watchNodes(ctx, true) },
		ActionNodeUsage:      c.watchNodeUsage,
	}
	return c
}

// Run loops until the operator quits, input ends or ctx is cancelled.
// Cleanup runs once before Run returns.
func (c *Controller) Run(ctx context.Context) Termination {
	for {
		c.showMenu()

		token, err := c.prompt.Ask(ctx, c.loc.T("menu.prompt"))
		if err != nil {
			return c.terminate(c.reasonFor(ctx, err))
		}

		action := ParseAction(token)
		switch action {
		case ActionInvalid:
			c.out.Error(c.loc.T("menu.invalid"))
			continue
		case ActionQuit:
			return c.terminate(ReasonQuit)
		}

		c.logger.Debug("Running menu action", zap.Stringer("action", action))
		err = c.actions[action](ctx)
		if reason, done := c.stopReason(ctx, err); done {
			return c.terminate(reason)
		}
		if err != nil {
			c.report(err)
		}
	}
}

func (c *Controller) showMenu() {
	items := make([]ui.MenuItem, 0, len(menuOrder))
	for _, entry := range menuOrder {
		items = append(items, ui.MenuItem{
			Key:         entry.token,
			Description: c.loc.T(entry.key),
			Quit:        entry.action == ActionQuit,
		})
	}
	c.out.Menu(c.loc.T("menu.title"), items)
}

// stopReason reports whether err, or a cancelled ctx, ends the session
// rather than just the action
func (c *Controller) stopReason(ctx context.Context, err error) (Reason, bool) {
	switch {
	case errors.Is(err, io.EOF):
		return ReasonEOF, true
	case errors.Is(err, prompt.ErrInterrupted), ctx.Err() != nil:
		return ReasonInterrupt, true
	}
	return 0, false
}

func (c *Controller) reasonFor(ctx context.Context, err error) Reason {
	if reason, done := c.stopReason(ctx, err); done {
		return reason
	}
	// an unreadable stdin is treated like end of input
	c.logger.Warn("Reading the menu choice failed", zap.Error(err))
	return ReasonEOF
}

func (c *Controller) terminate(reason Reason) Termination {
	c.out.Info("")
	switch reason {
	case ReasonQuit:
		c.out.Success(c.loc.T("exit.quit"))
	case ReasonEOF:
		c.out.Success(c.loc.T("exit.eof"))
	case ReasonInterrupt:
		c.out.Warn(c.loc.T("exit.interrupt"))
	}
	c.logger.Info("Console stopped", zap.Stringer("reason", reason))
	if c.cleanup != nil {
		c.cleanup()
	}
	return terminated(reason)
}

// report prints an action failure; the menu keeps running
func (c *Controller) report(err error) {
	c.logger.Warn("Menu action failed", zap.Error(err))

	var apiErr *datasource.APIError
	if errors.As(err, &apiErr) {
		c.out.Error(c.loc.TF("error.cluster", map[string]interface{}{
			"Kind":  apiErr.Type.String(),
			"Error": apiErr.Error(),
		}))
		return
	}
	c.out.Error(c.loc.TF("error.action", map[string]interface{}{"Error": err.Error()}))
}

// showCommand prints the kubectl equivalent and optionally copies it
func (c *Controller) showCommand(cmd string) {
	c.out.Command(c.loc.T("command.label"), cmd)
	if !c.cfg.CopyCommands {
		return
	}
	if err := c.copy(cmd); err != nil {
		c.logger.Debug("Copy to clipboard failed", zap.Error(err))
		c.out.Muted(c.loc.TF("command.copy_failed", map[string]interface{}{"Error": err.Error()}))
		return
	}
	c.out.Muted(c.loc.T("command.copied"))
}

// live runs a poller session until the operator closes the view or ctx
// is cancelled
func (c *Controller) live(ctx context.Context, view ui.LiveView, sample poller.Sampler) error {
	c.showCommand(view.Command)
	if view.Hint == "" {
		view.Hint = c.loc.T("live.hint")
	}

	renderer, liveCtx := c.out.OpenLive(ctx, view)
	err := poller.New(view.Interval, c.logger).Run(liveCtx, sample, renderer)
	if closeErr := renderer.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if ctx.Err() == nil {
		c.out.Warn(c.loc.T("live.back_to_menu"))
	}
	return nil
}
