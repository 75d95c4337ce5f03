package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yourusername/kube-console/internal/console"
	"github.com/yourusername/kube-console/internal/datasource"
	"github.com/yourusername/kube-console/internal/model"
	"github.com/yourusername/kube-console/internal/poller"
	"github.com/yourusername/kube-console/internal/query"
	"github.com/yourusername/kube-console/internal/restarts"
)

const (
	envPrefix      = "KUBE_CONSOLE"
	defaultLogFile = "/tmp/kube-console.log"
)

// Config holds the application configuration
type Config struct {
	// Cluster configuration
	Kubeconfig     string
	Context        string
	NodeGroupLabel string
	ZoneLabel      string

	// Refresh configuration
	RefreshInterval time.Duration
	TopInterval     time.Duration

	// UI configuration
	Locale        string
	NoColor       bool
	DefaultWindow int
	LogTailLines  int
	CopyCommands  bool

	// Kubelet configuration
	KubeletTimeout time.Duration

	// Logging configuration
	LogLevel string
	LogFile  string
}

func setDefaults(v *viper.Viper) {
	// Defaults – nested keys align with config/config.yaml
	v.SetDefault("cluster.kubeconfig", "")
	v.SetDefault("cluster.context", "")
	v.SetDefault("cluster.node_group_label", model.DefaultNodeGroupLabel)
	v.SetDefault("cluster.zone_label", model.DefaultZoneLabel)

	v.SetDefault("refresh.interval", poller.DefaultInterval.String())
	v.SetDefault("refresh.top_interval", "1s")

	v.SetDefault("ui.locale", "en")
	v.SetDefault("ui.no_color", false)
	v.SetDefault("ui.default_window", restarts.DefaultWindow)
	v.SetDefault("ui.log_tail_lines", query.DefaultLogTail)
	v.SetDefault("ui.copy_commands", false)

	v.SetDefault("kubelet.timeout", datasource.DefaultKubeletTimeout.String())

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", defaultLogFile)

	if home, err := os.UserHomeDir(); err == nil {
		v.SetDefault("cluster.kubeconfig", filepath.Join(home, ".kube", "config"))
	}
}

// LoadConfig loads configuration from file and environment. Environment
// variables use the KUBE_CONSOLE_ prefix with dots replaced by
// underscores, e.g. KUBE_CONSOLE_UI_LOCALE.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.kube-console")
		v.AddConfigPath("/etc/kube-console")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Kubeconfig:      v.GetString("cluster.kubeconfig"),
		Context:         v.GetString("cluster.context"),
		NodeGroupLabel:  v.GetString("cluster.node_group_label"),
		ZoneLabel:       v.GetString("cluster.zone_label"),
		RefreshInterval: v.GetDuration("refresh.interval"),
		TopInterval:     v.GetDuration("refresh.top_interval"),
		Locale:          v.GetString("ui.locale"),
		NoColor:         v.GetBool("ui.no_color"),
		DefaultWindow:   v.GetInt("ui.default_window"),
		LogTailLines:    v.GetInt("ui.log_tail_lines"),
		CopyCommands:    v.GetBool("ui.copy_commands"),
		KubeletTimeout:  v.GetDuration("kubelet.timeout"),
		LogLevel:        v.GetString("logging.level"),
		LogFile:         v.GetString("logging.file"),
	}
	cfg.normalize()
	return cfg, nil
}

// normalize replaces zero values left by a config that omitted units or
// left keys blank
func (c *Config) normalize() {
	if c.NodeGroupLabel == "" {
		c.NodeGroupLabel = model.DefaultNodeGroupLabel
	}
	if c.ZoneLabel == "" {
		c.ZoneLabel = model.DefaultZoneLabel
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = poller.DefaultInterval
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
	if c.KubeletTimeout <= 0 {
		c.KubeletTimeout = datasource.DefaultKubeletTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFile == "" {
		c.LogFile = defaultLogFile
	}
}

// ConsoleConfig returns the settings used by the menu actions
func (c *Config) ConsoleConfig() console.Config {
	return console.Config{
		NodeGroupLabel: c.NodeGroupLabel,
		ZoneLabel:      c.ZoneLabel,
		Interval:       c.RefreshInterval,
		TopInterval:    c.TopInterval,
		DefaultWindow:  c.DefaultWindow,
		LogTailLines:   c.LogTailLines,
		CopyCommands:   c.CopyCommands,
	}
}
