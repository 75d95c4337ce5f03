package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/kube-console/internal/model"
)

func usage(name string, cpu, mem int64) model.NodeUsage {
	return model.NodeUsage{
		Name:              name,
		CPUMillicores:     cpu,
		CPUAllocatable:    1000,
		MemoryBytes:       mem,
		MemoryAllocatable: 1000,
	}
}

func TestTopQueryApply(t *testing.T) {
	usages := []model.NodeUsage{
		usage("a", 100, 900),
		usage("b", 800, 100),
		usage("c", 500, 500),
		usage("d", 500, 200),
	}

	byCPU := TopQuery{SortBy: SortByCPU, Top: 3}.Apply(usages)
	require.Len(t, byCPU, 3)
	assert.Equal(t, []string{"b", "c", "d"}, names(byCPU))

	byMemory := TopQuery{SortBy: SortByMemory}.Apply(usages)
	assert.Equal(t, []string{"a", "c", "d", "b"}, names(byMemory))

	// the input is left untouched
	assert.Equal(t, "a", usages[0].Name)
}

func names(usages []model.NodeUsage) []string {
	out := make([]string, len(usages))
	for i, u := range usages {
		out[i] = u.Name
	}
	return out
}

func TestTopQueryCommand(t *testing.T) {
	assert.Equal(t,
		"kubectl top node --no-headers | sort -k3 -nr 2>/dev/null | head -n 20",
		TopQuery{}.Command())
	assert.Equal(t,
		"kubectl top node -l node.kubernetes.io/app=batch --no-headers | sort -k5 -nr 2>/dev/null | head -n 5",
		TopQuery{Group: "batch", SortBy: SortByMemory, Top: 5}.Command())
}

func TestSortKeyChoices(t *testing.T) {
	assert.Equal(t, SortByCPU, SortKeyChoices["1"])
	assert.Equal(t, SortByMemory, SortKeyChoices["2"])
	assert.Equal(t, "memory", SortByMemory.String())
}

func TestLogQuery(t *testing.T) {
	q := LogQuery{Namespace: "shop", Pod: "api-0", Container: "api"}
	assert.Equal(t, int64(50), q.TailLines())
	assert.Equal(t, "kubectl logs -n shop -p api-0 -c api --tail=50", q.Command())

	q.Tail = 200
	assert.Equal(t, int64(200), q.TailLines())
}
