package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/yourusername/kube-console/internal/console"
	"github.com/yourusername/kube-console/internal/datasource"
	"github.com/yourusername/kube-console/internal/diagnostic"
	"github.com/yourusername/kube-console/internal/i18n"
	"github.com/yourusername/kube-console/internal/prompt"
	"github.com/yourusername/kube-console/internal/ui"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"k8s.io/client-go/rest"
	metricsclientset "k8s.io/metrics/pkg/client/clientset/versioned"
)

// App wires configuration, cluster clients and the console together
type App struct {
	config  *Config
	version string
	logger  *zap.Logger
	in      io.Reader
	out     *ui.Console
	loc     *i18n.Localizer

	// notices receives startup and shutdown messages; errOut backs it when
	// stdout carries machine-readable output
	notices *ui.Console
	errOut  io.Writer

	reader  *datasource.APIServerClient
	usage   datasource.UsageSource
	kubelet *datasource.KubeletClient

	metricsFor func(*rest.Config) (metricsclientset.Interface, error)

	shutdownOnce sync.Once
}

// New creates a new App instance reading answers from in and writing the
// console to out
func New(config *Config, version string, in io.Reader, out io.Writer) (*App, error) {
	logger, err := initLogger(config.LogLevel, config.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return newApp(config, version, logger, in, out), nil
}

func newApp(config *Config, version string, logger *zap.Logger, in io.Reader, out io.Writer) *App {
	screen := ui.NewConsole(out, config.NoColor)
	return &App{
		config:  config,
		version: version,
		logger:  logger,
		in:      in,
		out:     screen,
		loc:     i18n.NewLocalizer(config.Locale),
		notices: screen,
		errOut:  os.Stderr,
		metricsFor: func(c *rest.Config) (metricsclientset.Interface, error) {
			return metricsclientset.NewForConfig(c)
		},
	}
}

// Logger returns the application logger
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Output returns the console output
func (a *App) Output() *ui.Console {
	return a.out
}

// Connect loads the kubeconfig, checks the API server is reachable and
// picks a node usage source. A failure here is a startup failure.
func (a *App) Connect(ctx context.Context) error {
	a.logger.Info("Starting kube-console",
		zap.String("version", a.version),
		zap.String("kubeconfig", a.config.Kubeconfig),
		zap.String("context", a.config.Context),
		zap.Duration("refresh_interval", a.config.RefreshInterval),
	)

	restConfig, err := datasource.LoadRESTConfig(a.config.Kubeconfig, a.config.Context)
	if err != nil {
		return err
	}
	client, err := datasource.NewAPIServerClient(restConfig, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create API Server client: %w", err)
	}
	return a.connectClient(ctx, client)
}

func (a *App) connectClient(ctx context.Context, client *datasource.APIServerClient) error {
	status, err := diagnostic.CheckConnectivity(client.GetConfig().Host, client)
	if err != nil {
		return err
	}
	a.logger.Info("API server reachable",
		zap.String("host", status.Host),
		zap.String("version", status.GitVersion),
		zap.Duration("latency", status.Latency),
	)
	a.notices.Muted(a.loc.TF("startup.connected", map[string]interface{}{
		"Host":    status.Host,
		"Version": status.GitVersion,
	}))

	a.reader = client
	a.warnMissingPermissions(ctx, client)
	a.usage = a.selectUsageSource(ctx, client)
	return nil
}

// warnMissingPermissions names the reads RBAC denies, so a failing menu
// action is not a surprise. A review that cannot run is only logged.
func (a *App) warnMissingPermissions(ctx context.Context, client *datasource.APIServerClient) {
	denied, err := diagnostic.MissingPermissions(ctx, client.Clientset().AuthorizationV1(), diagnostic.ConsolePermissions)
	if err != nil {
		a.logger.Debug("Permission review unavailable", zap.Error(err))
		return
	}
	for _, d := range denied {
		a.logger.Warn("Missing permission", zap.Stringer("permission", d.Permission), zap.String("reason", d.Reason))
		a.notices.Warn(a.loc.TF("startup.permission_denied", map[string]interface{}{
			"Permission": d.Permission.String(),
			"Reason":     d.Message(),
		}))
	}
}

// selectUsageSource prefers metrics-server and falls back to the kubelet
// summary API through the API server proxy. nil means no source is usable.
func (a *App) selectUsageSource(ctx context.Context, client *datasource.APIServerClient) datasource.UsageSource {
	restConfig := client.GetConfig()

	if datasource.MetricsAPIAvailable(client.Clientset().Discovery()) {
		mc, err := a.metricsFor(restConfig)
		if err == nil {
			src := datasource.NewMetricsServerSource(mc, a.logger)
			a.announceUsage(src)
			return src
		}
		a.logger.Warn("Failed to create metrics client, trying kubelet proxy", zap.Error(err))
	}

	access, err := client.CheckKubeletAccess(ctx)
	if err != nil {
		a.usageUnavailable(err.Error())
		return nil
	}
	if !access.Allowed {
		a.usageUnavailable(access.Message())
		return nil
	}

	kubelet, err := datasource.NewKubeletClient(restConfig, a.config.KubeletTimeout, a.logger)
	if err != nil {
		a.usageUnavailable(err.Error())
		return nil
	}
	a.kubelet = kubelet
	a.announceUsage(kubelet)
	return kubelet
}

func (a *App) announceUsage(src datasource.UsageSource) {
	a.logger.Info("Node usage source selected", zap.String("source", src.Name()))
	a.notices.Muted(a.loc.TF("startup.usage_source", map[string]interface{}{"Source": src.Name()}))
}

func (a *App) usageUnavailable(reason string) {
	a.logger.Warn("Node usage disabled", zap.String("reason", reason))
	a.notices.Warn(a.loc.TF("startup.usage_unavailable", map[string]interface{}{"Reason": reason}))
}

// Run starts the interactive menu and returns the process exit code
func (a *App) Run(ctx context.Context) int {
	if a.reader == nil {
		a.out.Error("not connected to a cluster")
		return 1
	}

	ctrl := console.New(a.reader, a.usage, a.out, prompt.NewLineReader(a.in), a.loc, a.logger,
		a.config.ConsoleConfig(), console.WithCleanup(a.Shutdown))
	term := ctrl.Run(ctx)

	// no-op when the controller already cleaned up
	a.Shutdown()
	a.logger.Info("Exiting", zap.Stringer("reason", term.Reason), zap.Int("code", term.Code))
	return term.Code
}

// Shutdown tells the operator the console is cleaning up, then releases
// clients and flushes the log. It runs once no matter how many callers
// reach it, and not at all after Close.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		a.notices.Muted(a.loc.T("exit.cleanup"))
		a.release()
	})
}

// Close releases clients without the exit notice, for runs that never
// reached the menu
func (a *App) Close() {
	a.shutdownOnce.Do(a.release)
}

func (a *App) release() {
	a.logger.Info("Shutting down application...")

	if a.kubelet != nil {
		if err := a.kubelet.Close(); err != nil {
			a.logger.Error("Failed to close kubelet client", zap.Error(err))
		}
	}
	if a.reader != nil {
		if err := a.reader.Close(); err != nil {
			a.logger.Error("Failed to close API server client", zap.Error(err))
		}
	}

	// Sync only flushes buffered log entries, ignore sync errors
	_ = a.logger.Sync()
}

// initLogger initializes the zap logger with file rotation support.
// Nothing is logged to the terminal, which belongs to the console.
func initLogger(levelStr, logFile string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if logFile == "" {
		logFile = defaultLogFile
	}
	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	zap.ReplaceGlobals(logger)
	return logger, nil
}
