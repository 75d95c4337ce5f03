package datasource

import "time"

// KubeletSummary represents the node part of the /stats/summary response
type KubeletSummary struct {
	Node NodeStats `json:"node"`
}

// NodeStats represents node-level metrics from kubelet
type NodeStats struct {
	NodeName  string       `json:"nodeName"`
	StartTime time.Time    `json:"startTime"`
	CPU       *CPUStats    `json:"cpu,omitempty"`
	Memory    *MemoryStats `json:"memory,omitempty"`
}

// CPUStats represents CPU usage statistics
type CPUStats struct {
	Time                 time.Time `json:"time"`
	UsageNanoCores       *uint64   `json:"usageNanoCores,omitempty"`       // Current rate of CPU usage in nanocores
	UsageCoreNanoSeconds *uint64   `json:"usageCoreNanoSeconds,omitempty"` // Cumulative CPU usage in nanoseconds
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Time            time.Time `json:"time"`
	AvailableBytes  *uint64   `json:"availableBytes,omitempty"`
	UsageBytes      *uint64   `json:"usageBytes,omitempty"`
	WorkingSetBytes *uint64   `json:"workingSetBytes,omitempty"`
}
