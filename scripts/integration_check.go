//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yourusername/kube-console/internal/datasource"
	"github.com/yourusername/kube-console/internal/model"
	"github.com/yourusername/kube-console/internal/restarts"
	"go.uber.org/zap"
	"k8s.io/client-go/util/homedir"
)

// Smoke check of every read the console performs, against the current
// kubeconfig context. Run with: go run scripts/integration_check.go
func main() {
	var kubeconfig string
	if home := homedir.HomeDir(); home != "" {
		kubeconfig = filepath.Join(home, ".kube", "config")
	}
	ctx := context.Background()
	logger := zap.NewNop()

	fmt.Println("=== kube-console Integration Check ===")
	fmt.Println("")

	fmt.Println("Check 1: Creating API Server client...")
	restConfig, err := datasource.LoadRESTConfig(kubeconfig, "")
	if err != nil {
		fail(err)
	}
	apiClient, err := datasource.NewAPIServerClient(restConfig, logger)
	if err != nil {
		fail(err)
	}
	info, err := apiClient.ServerVersion()
	if err != nil {
		fail(err)
	}
	fmt.Printf("✅ PASSED: connected to %s (%s)\n", restConfig.Host, info.GitVersion)

	fmt.Println("\nCheck 2: Listing namespaces...")
	namespaces, err := apiClient.ListNamespaces(ctx)
	if err != nil {
		fail(err)
	}
	fmt.Printf("✅ PASSED: %d namespaces\n", len(namespaces))

	fmt.Println("\nCheck 3: Listing nodes and node groups...")
	start := time.Now()
	nodes, err := apiClient.ListNodes(ctx, "")
	if err != nil {
		fail(err)
	}
	groups := datasource.NodeGroups(nodes, model.DefaultNodeGroupLabel)
	fmt.Printf("✅ PASSED: %d nodes, %d groups in %v\n", len(nodes), len(groups), time.Since(start))

	fmt.Println("\nCheck 4: Listing pods and scanning restarts...")
	start = time.Now()
	pods, err := apiClient.ListPods(ctx, "")
	if err != nil {
		fail(err)
	}
	counts := model.CountPods(pods)
	ranked := restarts.Scan(pods)
	fmt.Printf("✅ PASSED: %s, %d restarted containers in %v\n", counts, len(ranked), time.Since(start))

	fmt.Println("\nCheck 5: Listing abnormal events...")
	events, err := apiClient.ListEvents(ctx, "", "type!=Normal")
	if err != nil {
		fail(err)
	}
	fmt.Printf("✅ PASSED: %d abnormal events\n", len(events))

	fmt.Println("\nCheck 6: Node usage source...")
	var usage datasource.UsageSource
	access, err := apiClient.CheckKubeletAccess(ctx)
	switch {
	case err != nil:
		fmt.Printf("⚠️  SKIPPED: %v\n", err)
	case !access.Allowed:
		fmt.Printf("⚠️  SKIPPED: %s\n", access.Message())
	default:
		kubelet, err := datasource.NewKubeletClient(restConfig, datasource.DefaultKubeletTimeout, logger)
		if err != nil {
			fail(err)
		}
		defer kubelet.Close()
		usage = kubelet
	}
	if usage != nil {
		start = time.Now()
		usages, err := usage.NodeUsage(ctx, nodes)
		if err != nil {
			fail(err)
		}
		fmt.Printf("✅ PASSED: usage for %d/%d nodes via %s in %v\n", len(usages), len(nodes), usage.Name(), time.Since(start))
	}

	fmt.Println("\n=== All Checks Passed! ===")
}

func fail(err error) {
	fmt.Printf("❌ FAILED: %v\n", err)
	os.Exit(1)
}
