// Package restarts finds containers that terminated and were restarted,
// and ranks them by the time their previous instance finished.
package restarts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/kube-console/internal/model"
	corev1 "k8s.io/api/core/v1"
)

// DefaultWindow is the number of ranked events shown when the operator gives none
const DefaultWindow = 20

// Scan extracts one restart event per container whose last terminated state
// has a finish time, then ranks the whole set.
func Scan(pods []corev1.Pod) model.RankedRestartList {
	events := make(model.RankedRestartList, 0)
	for i := range pods {
		pod := &pods[i]
		for j := range pod.Status.ContainerStatuses {
			cs := &pod.Status.ContainerStatuses[j]
			term := cs.LastTerminationState.Terminated
			if term == nil || term.FinishedAt.IsZero() {
				continue
			}
			events = append(events, model.ContainerRestartEvent{
				Namespace:    pod.Namespace,
				Pod:          pod.Name,
				Container:    cs.Name,
				TerminatedAt: term.FinishedAt.Time,
				Reason:       term.Reason,
				ExitCode:     term.ExitCode,
				RestartCount: cs.RestartCount,
			})
		}
	}
	Rank(events)
	return events
}

// Rank sorts events by termination time, most recent first. Events with equal
// times keep their input order.
func Rank(events model.RankedRestartList) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].TerminatedAt.After(events[j].TerminatedAt)
	})
}

// Window returns the n most recent events of an already ranked list
func Window(events model.RankedRestartList, n int) model.RankedRestartList {
	if n <= 0 {
		n = DefaultWindow
	}
	if len(events) <= n {
		return events
	}
	return events[:n]
}

// ParseTimestamp parses an encoded finish time. A trailing "Z" is rewritten
// as an explicit +00:00 offset first.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid finish time %q: %w", s, err)
	}
	return t, nil
}

// Record is a container's last termination with the finish time still encoded
type Record struct {
	Namespace    string
	Pod          string
	Container    string
	FinishedAt   string
	Reason       string
	ExitCode     int32
	RestartCount int32
}

// ScanRecords ranks raw records. Records without a finish time are ignored;
// records whose finish time cannot be parsed are skipped and counted.
func ScanRecords(records []Record) (events model.RankedRestartList, skipped int) {
	events = make(model.RankedRestartList, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.FinishedAt) == "" {
			continue
		}
		finishedAt, err := ParseTimestamp(r.FinishedAt)
		if err != nil {
			skipped++
			continue
		}
		events = append(events, model.ContainerRestartEvent{
			Namespace:    r.Namespace,
			Pod:          r.Pod,
			Container:    r.Container,
			TerminatedAt: finishedAt,
			Reason:       r.Reason,
			ExitCode:     r.ExitCode,
			RestartCount: r.RestartCount,
		})
	}
	Rank(events)
	return events, skipped
}
