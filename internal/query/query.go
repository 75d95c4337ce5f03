// Package query turns operator selections into cluster list options, the
// equivalent kubectl command line, and the row transforms applied to each
// sample of a live view.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/kube-console/internal/datasource"
	"github.com/yourusername/kube-console/internal/model"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// DefaultTail is the number of rows kept when the operator gives none
	DefaultTail = 20
	// DefaultLogTail is the number of previous log lines fetched by default
	DefaultLogTail = 50

	abnormalEventSelector = "type!=Normal"
)

// tail keeps the last n rows. n <= 0 keeps everything.
func tail[T any](rows []T, n int) []T {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}

func tailOrDefault(n int) int {
	if n <= 0 {
		return DefaultTail
	}
	return n
}

func namespaceFlag(namespace string) string {
	if namespace == "" {
		return "-A"
	}
	return "-n " + namespace
}

// EventQuery describes the event view
type EventQuery struct {
	Namespace    string
	AbnormalOnly bool
	Tail         int
}

// ListOptions returns the field selector for the events list
func (q EventQuery) ListOptions() metav1.ListOptions {
	if q.AbnormalOnly {
		return metav1.ListOptions{FieldSelector: abnormalEventSelector}
	}
	return metav1.ListOptions{}
}

// Command renders the kubectl equivalent of the view
func (q EventQuery) Command() string {
	var b strings.Builder
	b.WriteString("kubectl get events ")
	b.WriteString(namespaceFlag(q.Namespace))
	if q.AbnormalOnly {
		b.WriteString(" --field-selector " + abnormalEventSelector)
	}
	fmt.Fprintf(&b, " --sort-by='.metadata.managedFields[].time' | tail -n %d", tailOrDefault(q.Tail))
	return b.String()
}

// Apply converts events to rows ordered by last-seen time, oldest first,
// and keeps the most recent Tail rows.
func (q EventQuery) Apply(events []corev1.Event) []model.EventRow {
	rows := make([]model.EventRow, 0, len(events))
	for i := range events {
		rows = append(rows, datasource.ConvertEvent(&events[i]))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LastSeen.Before(rows[j].LastSeen)
	})
	return tail(rows, tailOrDefault(q.Tail))
}

// PodQuery describes the pod views
type PodQuery struct {
	Namespace      string
	Wide           bool
	NonRunningOnly bool
	Tail           int
}

// Command renders the kubectl equivalent of the view
func (q PodQuery) Command() string {
	wide := ""
	if q.Wide {
		wide = " -o wide"
	}
	if q.NonRunningOnly {
		return fmt.Sprintf("kubectl get pods %s%s | grep -ivE ' Running' | tail -n %d",
			namespaceFlag(q.Namespace), wide, tailOrDefault(q.Tail))
	}
	return fmt.Sprintf("kubectl get po %s%s --sort-by=.metadata.creationTimestamp | tail -n %d",
		namespaceFlag(q.Namespace), wide, tailOrDefault(q.Tail))
}

// Apply converts pods to rows ordered by creation time. With
// NonRunningOnly, pods whose display status is Running are dropped.
func (q PodQuery) Apply(pods []corev1.Pod) []model.PodRow {
	rows := make([]model.PodRow, 0, len(pods))
	for i := range pods {
		row := datasource.ConvertPod(&pods[i])
		if q.NonRunningOnly && row.Status == "Running" {
			continue
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreationTimestamp.Before(rows[j].CreationTimestamp)
	})
	return tail(rows, tailOrDefault(q.Tail))
}

// NodeQuery describes the node views. An empty Group means all nodes.
type NodeQuery struct {
	GroupLabel    string
	Group         string
	ZoneLabel     string
	UnhealthyOnly bool
	Tail          int
}

func (q NodeQuery) groupLabel() string {
	if q.GroupLabel == "" {
		return model.DefaultNodeGroupLabel
	}
	return q.GroupLabel
}

func (q NodeQuery) zoneLabel() string {
	if q.ZoneLabel == "" {
		return model.DefaultZoneLabel
	}
	return q.ZoneLabel
}

// ListOptions returns the label selector for the node group
func (q NodeQuery) ListOptions() metav1.ListOptions {
	group := model.NodeGroupLabel{Key: q.groupLabel(), Value: q.Group}
	return metav1.ListOptions{LabelSelector: group.Selector()}
}

// Command renders the kubectl equivalent of the view
func (q NodeQuery) Command() string {
	var b strings.Builder
	b.WriteString("kubectl get nodes")
	if selector := q.ListOptions().LabelSelector; selector != "" {
		b.WriteString(" -l " + selector)
	}
	fmt.Fprintf(&b, " -L %s -L %s --sort-by=.metadata.creationTimestamp", q.zoneLabel(), q.groupLabel())
	if q.UnhealthyOnly {
		b.WriteString(" | grep -ivE ' Ready '")
	}
	fmt.Fprintf(&b, " | tail -n %d", tailOrDefault(q.Tail))
	return b.String()
}

// Apply converts nodes to rows ordered by creation time. With
// UnhealthyOnly, nodes whose status is exactly Ready are dropped; cordoned
// Ready nodes stay.
func (q NodeQuery) Apply(nodes []corev1.Node) []model.NodeRow {
	rows := make([]model.NodeRow, 0, len(nodes))
	for i := range nodes {
		row := datasource.ConvertNode(&nodes[i], q.zoneLabel(), q.groupLabel())
		if q.UnhealthyOnly && row.Status == "Ready" {
			continue
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreationTimestamp.Before(rows[j].CreationTimestamp)
	})
	return tail(rows, tailOrDefault(q.Tail))
}
