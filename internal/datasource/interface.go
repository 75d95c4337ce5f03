package datasource

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/kube-console/internal/model"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ClusterReader is the read-only view of the cluster the console works on.
// An empty namespace means all namespaces. Every call goes to the API
// server; nothing is cached between calls.
type ClusterReader interface {
	// ListNamespaces returns namespaces sorted by name
	ListNamespaces(ctx context.Context) ([]model.Namespace, error)

	// ListNodes returns nodes matching the label selector ("" for all)
	ListNodes(ctx context.Context, labelSelector string) ([]corev1.Node, error)

	// ListPods returns the pods of a namespace, or of the whole cluster
	ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error)

	// ListEvents returns events matching the field selector ("" for all)
	ListEvents(ctx context.Context, namespace, fieldSelector string) ([]corev1.Event, error)

	// StreamPreviousLogs copies the last tailLines lines of the previous
	// instance of a container to w
	StreamPreviousLogs(ctx context.Context, namespace, pod, container string, tailLines int64, w io.Writer) error
}

// UsageSource reports current CPU and memory usage of nodes
type UsageSource interface {
	// NodeUsage returns usage for the given nodes. Nodes without data are
	// left out.
	NodeUsage(ctx context.Context, nodes []corev1.Node) ([]model.NodeUsage, error)

	// Name returns the usage source name (for logging/debugging)
	Name() string
}

// Helper functions to convert Kubernetes API objects to view rows

// NodeGroups returns the distinct values of a node label, sorted
func NodeGroups(nodes []corev1.Node, labelKey string) []string {
	seen := make(map[string]struct{})
	for i := range nodes {
		if v, ok := nodes[i].Labels[labelKey]; ok {
			seen[v] = struct{}{}
		}
	}
	groups := make([]string, 0, len(seen))
	for v := range seen {
		groups = append(groups, v)
	}
	sort.Strings(groups)
	return groups
}

// ConvertNode converts a Kubernetes Node to a NodeRow. zoneLabel and
// groupLabel select the extra label columns.
func ConvertNode(node *corev1.Node, zoneLabel, groupLabel string) model.NodeRow {
	return model.NodeRow{
		Name:              node.Name,
		Status:            NodeStatus(node),
		Roles:             strings.Join(extractNodeRoles(node), ","),
		Version:           node.Status.NodeInfo.KubeletVersion,
		Zone:              node.Labels[zoneLabel],
		Group:             node.Labels[groupLabel],
		CreationTimestamp: node.CreationTimestamp.Time,
	}
}

// extractNodeRoles extracts node roles from node-role.kubernetes.io labels
func extractNodeRoles(node *corev1.Node) []string {
	const prefix = "node-role.kubernetes.io/"
	roles := []string{}
	for key := range node.Labels {
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			roles = append(roles, strings.TrimPrefix(key, prefix))
		}
	}
	if len(roles) == 0 {
		return []string{"<none>"}
	}
	sort.Strings(roles)
	return roles
}

// NodeStatus returns the kubectl style node status: Ready, NotReady or
// Unknown, with SchedulingDisabled appended for cordoned nodes
func NodeStatus(node *corev1.Node) string {
	status := "Unknown"
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			if cond.Status == corev1.ConditionTrue {
				status = "Ready"
			} else {
				status = "NotReady"
			}
			break
		}
	}
	if node.Spec.Unschedulable {
		status += ",SchedulingDisabled"
	}
	return status
}

// ConvertPod converts a Kubernetes Pod to a PodRow
func ConvertPod(pod *corev1.Pod) model.PodRow {
	row := model.PodRow{
		Namespace:         pod.Namespace,
		Name:              pod.Name,
		Status:            PodStatus(pod),
		CreationTimestamp: pod.CreationTimestamp.Time,
		PodIP:             pod.Status.PodIP,
		Node:              pod.Spec.NodeName,
	}

	ready := 0
	for _, cs := range pod.Status.ContainerStatuses {
		row.Restarts += cs.RestartCount
		if cs.Ready {
			ready++
		}
	}
	row.Ready = fmt.Sprintf("%d/%d", ready, len(pod.Spec.Containers))
	return row
}

// PodStatus derives the status column kubectl prints for a pod: container
// waiting or terminated reasons win over the phase, init containers are
// reported as Init:<reason>, and deleted pods show Terminating.
func PodStatus(pod *corev1.Pod) string {
	status := string(pod.Status.Phase)
	if pod.Status.Reason != "" {
		status = pod.Status.Reason
	}

	for i, cs := range pod.Status.InitContainerStatuses {
		switch {
		case cs.State.Terminated != nil && cs.State.Terminated.ExitCode == 0:
			continue
		case cs.State.Terminated != nil:
			if cs.State.Terminated.Reason != "" {
				return "Init:" + cs.State.Terminated.Reason
			}
			return fmt.Sprintf("Init:ExitCode:%d", cs.State.Terminated.ExitCode)
		case cs.State.Waiting != nil && cs.State.Waiting.Reason != "" && cs.State.Waiting.Reason != "PodInitializing":
			return "Init:" + cs.State.Waiting.Reason
		default:
			return fmt.Sprintf("Init:%d/%d", i, len(pod.Spec.InitContainers))
		}
	}

	running := false
	for i := len(pod.Status.ContainerStatuses) - 1; i >= 0; i-- {
		cs := pod.Status.ContainerStatuses[i]
		switch {
		case cs.State.Waiting != nil && cs.State.Waiting.Reason != "":
			status = cs.State.Waiting.Reason
		case cs.State.Terminated != nil && cs.State.Terminated.Reason != "":
			status = cs.State.Terminated.Reason
		case cs.State.Terminated != nil:
			status = fmt.Sprintf("ExitCode:%d", cs.State.Terminated.ExitCode)
		case cs.State.Running != nil && cs.Ready:
			running = true
		}
	}
	if running && status == "Completed" {
		status = string(corev1.PodRunning)
	}

	if pod.DeletionTimestamp != nil {
		if pod.Status.Reason == "NodeLost" {
			return "Unknown"
		}
		return "Terminating"
	}
	return status
}

// ConvertEvent converts a Kubernetes Event to an EventRow
func ConvertEvent(event *corev1.Event) model.EventRow {
	return model.EventRow{
		Namespace: event.Namespace,
		LastSeen:  EventTime(event),
		Type:      event.Type,
		Reason:    event.Reason,
		Object:    strings.ToLower(event.InvolvedObject.Kind) + "/" + event.InvolvedObject.Name,
		Message:   event.Message,
		Count:     event.Count,
	}
}

// EventTime is the time an event was last seen. Events written through the
// events.k8s.io API carry EventTime and series data instead of
// LastTimestamp; the latest managed field update is used before falling
// back to the creation time.
func EventTime(event *corev1.Event) time.Time {
	if !event.LastTimestamp.IsZero() {
		return event.LastTimestamp.Time
	}
	if event.Series != nil && !event.Series.LastObservedTime.IsZero() {
		return event.Series.LastObservedTime.Time
	}
	if !event.EventTime.IsZero() {
		return event.EventTime.Time
	}
	var latest metav1.Time
	for _, mf := range event.ManagedFields {
		if mf.Time != nil && mf.Time.After(latest.Time) {
			latest = *mf.Time
		}
	}
	if !latest.IsZero() {
		return latest.Time
	}
	return event.CreationTimestamp.Time
}
