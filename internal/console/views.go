package console

import (
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/kube-console/internal/model"
	"github.com/yourusername/kube-console/internal/ui"
)

const (
	restartTimeLayout = "2006-01-02 15:04:05"
	messageWidth      = 80
)

// labelColumn names a label column the way `kubectl get -L` does
func labelColumn(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		key = key[i+1:]
	}
	return strings.ToUpper(key)
}

func eventTable(rows []model.EventRow, allNamespaces bool, now time.Time) ui.Table {
	headers := []string{"LAST SEEN", "TYPE", "REASON", "OBJECT", "MESSAGE"}
	if allNamespaces {
		headers = append([]string{"NAMESPACE"}, headers...)
	}
	t := ui.Table{Headers: headers, MaxCellWidth: messageWidth}
	for _, r := range rows {
		row := []string{ui.FormatAge(now.Sub(r.LastSeen)), r.Type, r.Reason, r.Object, r.Message}
		if allNamespaces {
			row = append([]string{r.Namespace}, row...)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func podTable(rows []model.PodRow, allNamespaces, wide bool, now time.Time) ui.Table {
	headers := []string{"NAME", "READY", "STATUS", "RESTARTS", "AGE"}
	if allNamespaces {
		headers = append([]string{"NAMESPACE"}, headers...)
	}
	if wide {
		headers = append(headers, "IP", "NODE")
	}
	t := ui.Table{Headers: headers}
	for _, r := range rows {
		row := []string{r.Name, r.Ready, r.Status, strconv.Itoa(int(r.Restarts)), ui.FormatAge(now.Sub(r.CreationTimestamp))}
		if allNamespaces {
			row = append([]string{r.Namespace}, row...)
		}
		if wide {
			row = append(row, r.PodIP, r.Node)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func nodeTable(rows []model.NodeRow, zoneLabel, groupLabel string, now time.Time) ui.Table {
	t := ui.Table{Headers: []string{"NAME", "STATUS", "ROLES", "AGE", "VERSION", labelColumn(zoneLabel), labelColumn(groupLabel)}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Name, r.Status, r.Roles, ui.FormatAge(now.Sub(r.CreationTimestamp)), r.Version, r.Zone, r.Group,
		})
	}
	return t
}

func usageTable(usages []model.NodeUsage) ui.Table {
	t := ui.Table{Headers: []string{"NAME", "CPU(cores)", "CPU%", "MEMORY(bytes)", "MEMORY%"}}
	for _, u := range usages {
		t.Rows = append(t.Rows, []string{
			u.Name,
			ui.FormatMillicores(u.CPUMillicores),
			ui.FormatPercentage(u.CPUPercent()),
			ui.FormatBytes(u.MemoryBytes),
			ui.FormatPercentage(u.MemoryPercent()),
		})
	}
	return t
}

func restartTable(events model.RankedRestartList) ui.Table {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.Namespace,
			e.Pod,
			e.Container,
			e.TerminatedAt.UTC().Format(restartTimeLayout),
			e.Reason,
			strconv.Itoa(int(e.ExitCode)),
		})
	}
	return ui.IndexedTable([]string{"Namespace", "Pod", "Container", "LastTerminatedTime", "Reason", "ExitCode"}, rows)
}
