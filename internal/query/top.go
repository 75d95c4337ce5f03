package query

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/yourusername/kube-console/internal/model"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// SortKey selects the usage column nodes are ranked by
type SortKey int

const (
	SortByCPU SortKey = iota
	SortByMemory
)

func (k SortKey) String() string {
	switch k {
	case SortByCPU:
		return "cpu"
	case SortByMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// column is the field of `kubectl top node --no-headers` holding the
// percentage for this key
func (k SortKey) column() int {
	if k == SortByMemory {
		return 5
	}
	return 3
}

// SortKeyChoices maps the menu answers to sort keys
var SortKeyChoices = map[string]SortKey{
	"1": SortByCPU,
	"2": SortByMemory,
}

// TopQuery describes the node usage ranking
type TopQuery struct {
	GroupLabel string
	Group      string
	SortBy     SortKey
	Top        int
}

// ListOptions returns the label selector for the node group
func (q TopQuery) ListOptions() metav1.ListOptions {
	label := q.GroupLabel
	if label == "" {
		label = model.DefaultNodeGroupLabel
	}
	group := model.NodeGroupLabel{Key: label, Value: q.Group}
	return metav1.ListOptions{LabelSelector: group.Selector()}
}

// Command renders the kubectl equivalent of the view
func (q TopQuery) Command() string {
	cmd := "kubectl top node"
	if selector := q.ListOptions().LabelSelector; selector != "" {
		cmd += " -l " + selector
	}
	return fmt.Sprintf("%s --no-headers | sort -k%d -nr 2>/dev/null | head -n %s",
		cmd, q.SortBy.column(), strconv.Itoa(tailOrDefault(q.Top)))
}

func (q TopQuery) percent(u model.NodeUsage) float64 {
	if q.SortBy == SortByMemory {
		return u.MemoryPercent()
	}
	return u.CPUPercent()
}

// Apply ranks usages by the chosen percentage, highest first, and keeps
// the first Top entries. Equal percentages keep their input order.
func (q TopQuery) Apply(usages []model.NodeUsage) []model.NodeUsage {
	ranked := make([]model.NodeUsage, len(usages))
	copy(ranked, usages)
	sort.SliceStable(ranked, func(i, j int) bool {
		return q.percent(ranked[i]) > q.percent(ranked[j])
	})
	if n := tailOrDefault(q.Top); len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// LogQuery describes a previous-instance log fetch
type LogQuery struct {
	Namespace string
	Pod       string
	Container string
	Tail      int
}

// TailLines returns the requested line count, DefaultLogTail when unset
func (q LogQuery) TailLines() int64 {
	if q.Tail <= 0 {
		return DefaultLogTail
	}
	return int64(q.Tail)
}

// Command renders the kubectl equivalent of the fetch
func (q LogQuery) Command() string {
	return fmt.Sprintf("kubectl logs -n %s -p %s -c %s --tail=%d", q.Namespace, q.Pod, q.Container, q.TailLines())
}
