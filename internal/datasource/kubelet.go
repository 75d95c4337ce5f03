package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/kube-console/internal/model"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/rest"
)

const (
	summaryAPIPath = "/stats/summary"

	// DefaultKubeletTimeout bounds one summary request so a dead node does
	// not stall the whole usage view
	DefaultKubeletTimeout = 3 * time.Second
)

// KubeletClient implements UsageSource using the kubelet Summary API,
// reached through the API Server node proxy
type KubeletClient struct {
	httpClient *http.Client
	host       string
	logger     *zap.Logger
}

var _ UsageSource = (*KubeletClient)(nil)

// NewKubeletClient creates a kubelet client. Authentication is handled by
// the transport built from config, which supports every kubeconfig auth
// type (client certs, bearer tokens, exec plugins).
func NewKubeletClient(config *rest.Config, timeout time.Duration, logger *zap.Logger) (*KubeletClient, error) {
	transport, err := rest.TransportFor(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport from config: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultKubeletTimeout
	}

	logger.Info("Kubelet client using API Server proxy", zap.Duration("timeout", timeout))

	return &KubeletClient{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		host:       strings.TrimSuffix(config.Host, "/"),
		logger:     logger,
	}, nil
}

// NodeUsage fetches the summary of each node in turn. A node whose summary
// cannot be read is left out; an error is returned only when every node
// failed.
func (c *KubeletClient) NodeUsage(ctx context.Context, nodes []corev1.Node) ([]model.NodeUsage, error) {
	usages := make([]model.NodeUsage, 0, len(nodes))
	var lastErr error

	for i := range nodes {
		node := &nodes[i]
		summary, err := c.fetchSummary(ctx, node.Name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("Failed to fetch kubelet summary",
				zap.String("node", node.Name),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		usage := model.NodeUsage{
			Name:              node.Name,
			CPUAllocatable:    node.Status.Allocatable.Cpu().MilliValue(),
			MemoryAllocatable: node.Status.Allocatable.Memory().Value(),
		}
		if summary.Node.CPU != nil && summary.Node.CPU.UsageNanoCores != nil {
			usage.CPUMillicores = int64(*summary.Node.CPU.UsageNanoCores / 1000000) // nanocores to millicores
		}
		if summary.Node.Memory != nil && summary.Node.Memory.WorkingSetBytes != nil {
			usage.MemoryBytes = int64(*summary.Node.Memory.WorkingSetBytes)
		}
		usages = append(usages, usage)
	}

	if len(usages) == 0 && lastErr != nil {
		return nil, fmt.Errorf("no kubelet summary available: %w", lastErr)
	}

	c.logger.Debug("Node usage fetched from kubelet",
		zap.Int("nodes", len(nodes)),
		zap.Int("reported", len(usages)),
	)
	return usages, nil
}

// fetchSummary fetches the summary from kubelet
func (c *KubeletClient) fetchSummary(ctx context.Context, nodeName string) (*KubeletSummary, error) {
	url := fmt.Sprintf("%s/api/v1/nodes/%s/proxy%s", c.host, nodeName, summaryAPIPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("Fetching kubelet summary", zap.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{
			Type:    statusErrType(resp.StatusCode),
			Op:      "get kubelet summary",
			Message: fmt.Sprintf("kubelet returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			Err:     errors.New(resp.Status),
		}
	}

	var summary KubeletSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &summary, nil
}

func statusErrType(code int) ErrType {
	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return ErrServerError
	default:
		return ErrUnknown
	}
}

// Name returns the usage source name
func (c *KubeletClient) Name() string {
	return "KubeletProxy"
}

// Close cleans up resources
func (c *KubeletClient) Close() error {
	c.logger.Info("Closing kubelet client")
	c.httpClient.CloseIdleConnections()
	return nil
}
