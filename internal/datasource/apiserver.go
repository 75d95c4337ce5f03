package datasource

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/yourusername/kube-console/internal/diagnostic"
	"github.com/yourusername/kube-console/internal/model"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/version"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// APIServerClient implements ClusterReader using the Kubernetes API Server
type APIServerClient struct {
	clientset kubernetes.Interface
	config    *rest.Config
	logger    *zap.Logger
}

var _ ClusterReader = (*APIServerClient)(nil)

// LoadRESTConfig resolves the client configuration. An empty kubeconfig
// tries in-cluster config first, then the default loading rules.
func LoadRESTConfig(kubeconfig, context string) (*rest.Config, error) {
	configOverrides := &clientcmd.ConfigOverrides{}
	if context != "" {
		configOverrides.CurrentContext = context
	}

	if kubeconfig == "" {
		if config, err := rest.InClusterConfig(); err == nil {
			return config, nil
		}
		config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			clientcmd.NewDefaultClientConfigLoadingRules(),
			configOverrides,
		).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
		return config, nil
	}

	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig},
		configOverrides,
	).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig from %s: %w", kubeconfig, err)
	}
	return config, nil
}

// NewAPIServerClient creates a new API Server client
func NewAPIServerClient(config *rest.Config, logger *zap.Logger) (*APIServerClient, error) {
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	logger.Info("API Server client initialized", zap.String("host", config.Host))

	return NewAPIServerClientForClientset(clientset, config, logger), nil
}

// NewAPIServerClientForClientset wraps an existing clientset
func NewAPIServerClientForClientset(clientset kubernetes.Interface, config *rest.Config, logger *zap.Logger) *APIServerClient {
	return &APIServerClient{
		clientset: clientset,
		config:    config,
		logger:    logger,
	}
}

// ListNamespaces retrieves all namespaces sorted by name
func (c *APIServerClient) ListNamespaces(ctx context.Context) ([]model.Namespace, error) {
	c.logger.Debug("Fetching namespaces from API Server")

	nsList, err := c.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, ClassifyError("list namespaces", err)
	}

	namespaces := make([]model.Namespace, 0, len(nsList.Items))
	for i := range nsList.Items {
		namespaces = append(namespaces, model.Namespace{Name: nsList.Items[i].Name})
	}
	sort.SliceStable(namespaces, func(i, j int) bool {
		return namespaces[i].Name < namespaces[j].Name
	})

	c.logger.Debug("Namespaces fetched successfully", zap.Int("count", len(namespaces)))
	return namespaces, nil
}

// ListNodes retrieves nodes, optionally filtered by a label selector
func (c *APIServerClient) ListNodes(ctx context.Context, labelSelector string) ([]corev1.Node, error) {
	c.logger.Debug("Fetching nodes from API Server", zap.String("selector", labelSelector))

	nodeList, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	if err != nil {
		return nil, ClassifyError("list nodes", err)
	}

	c.logger.Debug("Nodes fetched successfully", zap.Int("count", len(nodeList.Items)))
	return nodeList.Items, nil
}

// ListPods retrieves all pods, optionally filtered by namespace
func (c *APIServerClient) ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error) {
	c.logger.Debug("Fetching pods from API Server", zap.String("namespace", namespace))

	podList, err := c.clientset.CoreV1().Pods(namespaceOrAll(namespace)).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, ClassifyError("list pods", err)
	}

	c.logger.Debug("Pods fetched successfully", zap.Int("count", len(podList.Items)))
	return podList.Items, nil
}

// ListEvents retrieves events, optionally filtered by namespace and field selector
func (c *APIServerClient) ListEvents(ctx context.Context, namespace, fieldSelector string) ([]corev1.Event, error) {
	c.logger.Debug("Fetching events from API Server",
		zap.String("namespace", namespace),
		zap.String("selector", fieldSelector),
	)

	eventList, err := c.clientset.CoreV1().Events(namespaceOrAll(namespace)).List(ctx, metav1.ListOptions{
		FieldSelector: fieldSelector,
	})
	if err != nil {
		return nil, ClassifyError("list events", err)
	}

	c.logger.Debug("Events fetched successfully", zap.Int("count", len(eventList.Items)))
	return eventList.Items, nil
}

// StreamPreviousLogs streams the log tail of the previous container instance
func (c *APIServerClient) StreamPreviousLogs(ctx context.Context, namespace, pod, container string, tailLines int64, w io.Writer) error {
	c.logger.Debug("Fetching previous container logs",
		zap.String("namespace", namespace),
		zap.String("pod", pod),
		zap.String("container", container),
		zap.Int64("tailLines", tailLines),
	)

	opts := &corev1.PodLogOptions{
		Container: container,
		Previous:  true,
		TailLines: &tailLines,
	}

	logStream, err := c.clientset.CoreV1().Pods(namespace).GetLogs(pod, opts).Stream(ctx)
	if err != nil {
		return ClassifyError("get previous logs", err)
	}
	defer logStream.Close()

	if _, err := io.Copy(w, logStream); err != nil {
		return fmt.Errorf("failed to read logs: %w", err)
	}
	return nil
}

// ServerVersion asks the API server for its version; it is the cheapest
// call that proves the credentials work
func (c *APIServerClient) ServerVersion() (*version.Info, error) {
	info, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return nil, ClassifyError("get server version", err)
	}
	return info, nil
}

// CheckKubeletAccess verifies whether the current identity can reach kubelet via the API Server proxy.
func (c *APIServerClient) CheckKubeletAccess(ctx context.Context) (diagnostic.AccessResult, error) {
	if c == nil || c.clientset == nil {
		return diagnostic.AccessResult{}, fmt.Errorf("api server client not initialised")
	}
	return diagnostic.CheckKubeletAccess(ctx, c.clientset.AuthorizationV1())
}

// Clientset exposes the underlying clientset for the usage sources
func (c *APIServerClient) Clientset() kubernetes.Interface {
	return c.clientset
}

// GetConfig returns the Kubernetes client config
func (c *APIServerClient) GetConfig() *rest.Config {
	return c.config
}

// Name returns the data source name
func (c *APIServerClient) Name() string {
	return "APIServer"
}

// Close cleans up resources
func (c *APIServerClient) Close() error {
	c.logger.Info("Closing API Server client")
	return nil
}

func namespaceOrAll(namespace string) string {
	if namespace == "" {
		return metav1.NamespaceAll
	}
	return namespace
}
