package model

import (
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
)

// DefaultNodeGroupLabel is the node label whose values define node groups
const DefaultNodeGroupLabel = "node.kubernetes.io/app"

// DefaultZoneLabel is the node label shown as the availability zone column
const DefaultZoneLabel = "topology.ebs.csi.aws.com/zone"

// Namespace is a selectable namespace
type Namespace struct {
	Name string
}

// NodeGroupLabel identifies a node group by label key and value
type NodeGroupLabel struct {
	Key   string
	Value string
}

// Selector returns the label selector matching the group's nodes
func (g NodeGroupLabel) Selector() string {
	if g.Value == "" {
		return ""
	}
	return g.Key + "=" + g.Value
}

// ContainerRestartEvent is derived from a container's last terminated state.
// Only containers whose last termination carries a finish time produce one.
type ContainerRestartEvent struct {
	Namespace    string    `json:"namespace"`
	Pod          string    `json:"pod"`
	Container    string    `json:"container"`
	TerminatedAt time.Time `json:"terminatedAt"`
	Reason       string    `json:"reason,omitempty"`
	ExitCode     int32     `json:"exitCode"`
	RestartCount int32     `json:"restartCount"`
}

// RankedRestartList is ordered by TerminatedAt, most recent first
type RankedRestartList []ContainerRestartEvent

// PodCounts summarises pod phases for the live count view
type PodCounts struct {
	Total    int
	Normal   int
	Abnormal int
}

func (c PodCounts) String() string {
	return fmt.Sprintf("Total=%d, Normal=%d, Abnormal=%d", c.Total, c.Normal, c.Abnormal)
}

// IsHealthyPhase reports whether a pod phase counts as normal.
// Running and Succeeded are both healthy.
func IsHealthyPhase(phase corev1.PodPhase) bool {
	return phase == corev1.PodRunning || phase == corev1.PodSucceeded
}

// CountPods computes total, normal and abnormal pod counts
func CountPods(pods []corev1.Pod) PodCounts {
	counts := PodCounts{Total: len(pods)}
	for i := range pods {
		if IsHealthyPhase(pods[i].Status.Phase) {
			counts.Normal++
		}
	}
	counts.Abnormal = counts.Total - counts.Normal
	return counts
}

// EventRow is one line of the event view
type EventRow struct {
	Namespace string
	LastSeen  time.Time
	Type      string
	Reason    string
	Object    string
	Message   string
	Count     int32
}

// PodRow is one line of the pod views
type PodRow struct {
	Namespace         string
	Name              string
	Ready             string
	Status            string
	Restarts          int32
	CreationTimestamp time.Time
	PodIP             string
	Node              string
}

// NodeRow is one line of the node views
type NodeRow struct {
	Name              string
	Status            string
	Roles             string
	Version           string
	Zone              string
	Group             string
	CreationTimestamp time.Time
}

// NodeUsage holds current usage of a node as reported by metrics-server or kubelet
type NodeUsage struct {
	Name              string
	CPUMillicores     int64
	CPUAllocatable    int64
	MemoryBytes       int64
	MemoryAllocatable int64
}

// CPUPercent returns CPU usage relative to allocatable CPU
func (u NodeUsage) CPUPercent() float64 {
	if u.CPUAllocatable <= 0 {
		return 0
	}
	return float64(u.CPUMillicores) / float64(u.CPUAllocatable) * 100
}

// MemoryPercent returns memory usage relative to allocatable memory
func (u NodeUsage) MemoryPercent() float64 {
	if u.MemoryAllocatable <= 0 {
		return 0
	}
	return float64(u.MemoryBytes) / float64(u.MemoryAllocatable) * 100
}
