package datasource

import (
	"context"

	"github.com/yourusername/kube-console/internal/model"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/discovery"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsclientset "k8s.io/metrics/pkg/client/clientset/versioned"
)

const metricsGroup = "metrics.k8s.io"

// MetricsServerSource implements UsageSource with the metrics.k8s.io API
type MetricsServerSource struct {
	client metricsclientset.Interface
	logger *zap.Logger
}

var _ UsageSource = (*MetricsServerSource)(nil)

func NewMetricsServerSource(client metricsclientset.Interface, logger *zap.Logger) *MetricsServerSource {
	return &MetricsServerSource{client: client, logger: logger}
}

// MetricsAPIAvailable reports whether the cluster serves metrics.k8s.io/v1beta1
func MetricsAPIAvailable(d discovery.ServerGroupsInterface) bool {
	groups, err := d.ServerGroups()
	if err != nil || groups == nil {
		return false
	}
	for _, g := range groups.Groups {
		if g.Name != metricsGroup {
			continue
		}
		for _, v := range g.Versions {
			if v.Version == metricsv1beta1.SchemeGroupVersion.Version {
				return true
			}
		}
	}
	return false
}

// NodeUsage lists node metrics once and matches them to the given nodes
func (s *MetricsServerSource) NodeUsage(ctx context.Context, nodes []corev1.Node) ([]model.NodeUsage, error) {
	list, err := s.client.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, ClassifyError("list node metrics", err)
	}

	byName := make(map[string]*metricsv1beta1.NodeMetrics, len(list.Items))
	for i := range list.Items {
		byName[list.Items[i].Name] = &list.Items[i]
	}

	usages := make([]model.NodeUsage, 0, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		m, ok := byName[node.Name]
		if !ok {
			continue
		}
		usages = append(usages, model.NodeUsage{
			Name:              node.Name,
			CPUMillicores:     m.Usage.Cpu().MilliValue(),
			CPUAllocatable:    node.Status.Allocatable.Cpu().MilliValue(),
			MemoryBytes:       m.Usage.Memory().Value(),
			MemoryAllocatable: node.Status.Allocatable.Memory().Value(),
		})
	}

	s.logger.Debug("Node usage fetched from metrics-server",
		zap.Int("nodes", len(nodes)),
		zap.Int("reported", len(usages)),
	)
	return usages, nil
}

// Name returns the usage source name
func (s *MetricsServerSource) Name() string {
	return "MetricsServer"
}
