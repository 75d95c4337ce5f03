package diagnostic

import (
	"fmt"
	"time"

	"github.com/yourusername/kube-console/internal/model"
	"k8s.io/apimachinery/pkg/version"
)

// ConnectivityStatus is the result of the startup probe
type ConnectivityStatus struct {
	Host       string
	GitVersion string
	Platform   string
	Latency    time.Duration
	CheckedAt  time.Time
}

// VersionGetter is satisfied by discovery clients and APIServerClient
type VersionGetter interface {
	ServerVersion() (*version.Info, error)
}

// CheckConnectivity asks the API server for its version. A failure here
// means credentials or networking are broken and the console cannot start.
func CheckConnectivity(host string, client VersionGetter) (*ConnectivityStatus, error) {
	start := time.Now()
	info, err := client.ServerVersion()
	if err != nil {
		return nil, fmt.Errorf("cannot reach the API server at %s: %w", host, err)
	}
	return &ConnectivityStatus{
		Host:       host,
		GitVersion: info.GitVersion,
		Platform:   info.Platform,
		Latency:    time.Since(start),
		CheckedAt:  time.Now(),
	}, nil
}

// Hint message IDs, resolved through the i18n catalogue
const (
	HintOOMKilled     = "hint.oom_killed"
	HintSIGKILL       = "hint.sigkill"
	HintSIGTERM       = "hint.sigterm"
	HintCompleted     = "hint.completed"
	HintStartError    = "hint.start_error"
	HintSegfault      = "hint.segfault"
	HintCommandFailed = "hint.command_not_found"
	HintAppError      = "hint.app_error"
)

// RestartHint returns the message ID explaining the most likely cause of a
// container's last termination
func RestartHint(event model.ContainerRestartEvent) string {
	switch event.Reason {
	case "OOMKilled":
		return HintOOMKilled
	case "Completed":
		return HintCompleted
	case "StartError", "ContainerCannotRun", "CreateContainerError":
		return HintStartError
	}

	switch event.ExitCode {
	case 0:
		return HintCompleted
	case 137:
		return HintSIGKILL
	case 143:
		return HintSIGTERM
	case 139:
		return HintSegfault
	case 126, 127:
		return HintCommandFailed
	default:
		return HintAppError
	}
}

// RecommendedCommand returns the kubectl command worth running next for a
// restarted container
func RecommendedCommand(event model.ContainerRestartEvent) string {
	switch RestartHint(event) {
	case HintOOMKilled, HintSIGKILL:
		return "kubectl describe pod -n " + event.Namespace + " " + event.Pod + " # Check limits, probes and events"
	case HintStartError, HintCommandFailed:
		return "kubectl describe pod -n " + event.Namespace + " " + event.Pod + " # Check image, command and mounts"
	default:
		return "kubectl logs -n " + event.Namespace + " " + event.Pod + " -c " + event.Container + " --previous # Check crash logs"
	}
}
