package poller

import (
	"context"

	"github.com/yourusername/kube-console/internal/model"
	corev1 "k8s.io/api/core/v1"
)

// PodLister lists the pods of the scope chosen when the session started
type PodLister func(ctx context.Context) ([]corev1.Pod, error)

// PodCountSampler counts normal and abnormal pods on every tick. format
// turns the counts into a frame; nil renders PodCounts.String.
func PodCountSampler(list PodLister, format func(model.PodCounts) string) Sampler {
	if format == nil {
		format = model.PodCounts.String
	}
	return func(ctx context.Context) (string, error) {
		pods, err := list(ctx)
		if err != nil {
			return "", err
		}
		return format(model.CountPods(pods)), nil
	}
}
