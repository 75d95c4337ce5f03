package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/yourusername/kube-console/internal/model"
	"github.com/yourusername/kube-console/internal/restarts"
	"github.com/yourusername/kube-console/internal/ui"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

// Output formats of the restarts report
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// RestartReport selects what the non-interactive restarts command prints
type RestartReport struct {
	Namespace string
	Limit     int
	Format    string
	// FromFile reads a `kubectl get pods -o json|yaml` dump instead of the
	// live cluster
	FromFile string
}

// ReportRestarts prints the ranked restart list. It connects to the
// cluster only when no dump file is given.
func (a *App) ReportRestarts(ctx context.Context, r RestartReport) error {
	switch r.Format {
	case "", FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", r.Format)
	}
	if r.Format == FormatJSON || r.Format == FormatYAML {
		a.notices = ui.NewConsole(a.errOut, true)
	}

	var events model.RankedRestartList
	if r.FromFile != "" {
		data, err := os.ReadFile(r.FromFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", r.FromFile, err)
		}
		records, err := restarts.DecodePodList(data)
		if err != nil {
			return err
		}
		var skipped int
		events, skipped = restarts.ScanRecords(filterNamespace(records, r.Namespace))
		if skipped > 0 {
			a.logger.Warn("Skipped records with unreadable timestamps", zap.Int("skipped", skipped))
			fmt.Fprintf(a.errOut, "skipped %d record(s) with unreadable timestamps\n", skipped)
		}
	} else {
		if a.reader == nil {
			if err := a.Connect(ctx); err != nil {
				return err
			}
		}
		pods, err := a.reader.ListPods(ctx, r.Namespace)
		if err != nil {
			return err
		}
		events = restarts.Scan(pods)
	}

	limit := r.Limit
	if limit <= 0 {
		limit = a.config.DefaultWindow
	}
	return writeRestarts(a.out, restarts.Window(events, limit), r.Format)
}

func filterNamespace(records []restarts.Record, namespace string) []restarts.Record {
	if namespace == "" {
		return records
	}
	out := records[:0:0]
	for _, r := range records {
		if r.Namespace == namespace {
			out = append(out, r)
		}
	}
	return out
}

func writeRestarts(out ui.Output, events model.RankedRestartList, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	case FormatYAML:
		data, err := yaml.Marshal(events)
		if err != nil {
			return fmt.Errorf("failed to encode restarts: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	if len(events) == 0 {
		out.Info("No restarted containers.")
		return nil
	}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.Namespace,
			e.Pod,
			e.Container,
			e.TerminatedAt.UTC().Format("2006-01-02 15:04:05"),
			e.Reason,
			strconv.Itoa(int(e.ExitCode)),
			strconv.Itoa(int(e.RestartCount)),
		})
	}
	out.Table(ui.IndexedTable([]string{"Namespace", "Pod", "Container", "LastTerminatedTime", "Reason", "ExitCode", "Restarts"}, rows))
	return nil
}
