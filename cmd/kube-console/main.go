package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yourusername/kube-console/internal/app"
	"go.uber.org/zap"
	"k8s.io/klog/v2"
)

var (
	// Version will be set by build flags, default to timestamp
	Version = "dev-" + time.Now().Format("20060102-150405")
	// BuildTime will be set by build flags
	BuildTime = "unknown"

	// Global flags
	configFile     string
	kubeconfig     string
	kubeContext    string
	verbose        bool
	locale         string
	nodeGroupLabel string
	noColor        bool

	// exitCode is what the console asked main to exit with
	exitCode int
)

// errInterrupted marks a startup aborted by SIGINT/SIGTERM
var errInterrupted = errors.New("interrupted")

var rootCmd = &cobra.Command{
	Use:   "kube-console",
	Short: "An interactive, read-only operator console for Kubernetes",
	Long: `kube-console is a numbered-menu console for day-to-day Kubernetes
operations. It shows events, pods and nodes as live views, ranks recently
restarted containers and prints the kubectl command behind every view.

It never modifies the cluster.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConsole,
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive menu (default)",
	Long:  `Launch the interactive menu against the current kubeconfig context`,
	RunE:  runConsole,
}

var restartsCmd = &cobra.Command{
	Use:   "restarts",
	Short: "Print recently restarted containers and exit",
	Long: `Rank containers by their last termination time, most recent first.
With --from-file the ranking is computed from a saved
'kubectl get pods -o json|yaml' dump without contacting a cluster.`,
	RunE: runRestarts,
}

func init() {
	// Configure klog to suppress client-go logs, which would otherwise
	// interleave with the menu on stderr
	klog.InitFlags(nil)
	flag.Set("logtostderr", "false")     // Don't log to stderr
	flag.Set("alsologtostderr", "false") // Don't also log to stderr
	flag.Set("stderrthreshold", "FATAL") // Only FATAL errors to stderr
	flag.Set("v", "0")                   // Minimal verbosity

	// Add Go flags to pflag so Cobra can parse them
	// This avoids conflicts when global flags are placed before subcommands
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	rootCmd.AddCommand(consoleCmd, restartsCmd)
	rootCmd.SetVersionTemplate(fmt.Sprintf("kube-console %s (built %s)\n", Version, BuildTime))

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&kubeconfig, "kubeconfig", "k", "", "path to kubeconfig file (default: $HOME/.kube/config)")
	rootCmd.PersistentFlags().StringVarP(&kubeContext, "context", "c", "", "kubernetes context to use")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&locale, "locale", "l", "en", "interface language (en, ko)")
	rootCmd.PersistentFlags().StringVar(&nodeGroupLabel, "node-group-label", "", "node label whose values define node groups")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")

	// Console flags, shared by the root command
	for _, cmd := range []*cobra.Command{rootCmd, consoleCmd} {
		cmd.Flags().IntP("refresh", "r", 0, "live view refresh interval in seconds (default 2)")
		cmd.Flags().Bool("copy", false, "copy every printed kubectl command to the clipboard")
	}

	restartsCmd.Flags().StringP("namespace", "n", "", "namespace to scan (default: all namespaces)")
	restartsCmd.Flags().Int("limit", 0, "number of containers to print (default: ui.default_window)")
	restartsCmd.Flags().StringP("output", "o", app.FormatTable, "output format: table, json or yaml")
	restartsCmd.Flags().StringP("from-file", "f", "", "read pods from a kubectl JSON/YAML dump instead of the cluster")
}

// loadConfig applies the global flags over the file and environment config
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	config, err := app.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if kubeconfig != "" {
		config.Kubeconfig = kubeconfig
	}
	if kubeContext != "" {
		config.Context = kubeContext
	}
	if nodeGroupLabel != "" {
		config.NodeGroupLabel = nodeGroupLabel
	}
	// Only override locale if user explicitly specified it
	if cmd.Flags().Changed("locale") {
		config.Locale = locale
	}
	if noColor {
		config.NoColor = true
	}
	if verbose {
		config.LogLevel = "debug"
	}
	return config, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runConsole(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if refresh, _ := cmd.Flags().GetInt("refresh"); refresh > 0 {
		config.RefreshInterval = time.Duration(refresh) * time.Second
	}
	if copyCommands, _ := cmd.Flags().GetBool("copy"); copyCommands {
		config.CopyCommands = true
	}

	application, err := app.New(config, Version, os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	if err := application.Connect(ctx); err != nil {
		application.Close()
		if ctx.Err() != nil {
			return errInterrupted
		}
		return err
	}

	exitCode = application.Run(ctx)
	zap.L().Info("Console finished", zap.Int("exit_code", exitCode))
	return nil
}

func runRestarts(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	report := app.RestartReport{}
	report.Namespace, _ = cmd.Flags().GetString("namespace")
	report.Limit, _ = cmd.Flags().GetInt("limit")
	report.Format, _ = cmd.Flags().GetString("output")
	report.FromFile, _ = cmd.Flags().GetString("from-file")

	application, err := app.New(config, Version, os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Close()

	ctx, stop := signalContext()
	defer stop()

	if err := application.ReportRestarts(ctx, report); err != nil {
		if ctx.Err() != nil {
			return errInterrupted
		}
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errInterrupted) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
