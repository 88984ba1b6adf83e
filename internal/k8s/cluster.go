package k8s

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// GetAPIResources returns the API resources discovered from the server.
func (c *kubernetesClient) GetAPIResources(ctx context.Context, kubeContext string, namespacedOnly bool) ([]APIResourceInfo, error) {
	c.logOperation("get-api-resources", kubeContext, "", "", "")

	discoveryClient, err := c.getDiscoveryClient(kubeContext)
	if err != nil {
		return nil, err
	}

	resourceLists, err := discoveryClient.ServerPreferredResources()
	if err != nil && len(resourceLists) == 0 {
		return nil, fmt.Errorf("failed to discover API resources: %w", err)
	}

	var resources []APIResourceInfo
	for _, list := range resourceLists {
		if list == nil {
			continue
		}
		group, version := parseGroupVersion(list.GroupVersion)
		for _, apiResource := range list.APIResources {
			// Skip subresources like pods/log.
			if strings.Contains(apiResource.Name, "/") {
				continue
			}
			if namespacedOnly && !apiResource.Namespaced {
				continue
			}
			resources = append(resources, APIResourceInfo{
				Name:         apiResource.Name,
				SingularName: apiResource.SingularName,
				Namespaced:   apiResource.Namespaced,
				Kind:         apiResource.Kind,
				Verbs:        apiResource.Verbs,
				Group:        group,
				Version:      version,
			})
		}
	}
	return resources, nil
}

// GetClusterHealth returns the health status of the cluster based on API
// server reachability, component statuses, and node readiness.
func (c *kubernetesClient) GetClusterHealth(ctx context.Context, kubeContext string) (*ClusterHealth, error) {
	c.logOperation("get-cluster-health", kubeContext, "", "", "")

	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return nil, err
	}

	health := &ClusterHealth{
		Status:     "Unknown",
		Components: []ComponentHealth{},
		Nodes:      []NodeHealth{},
	}

	serverVersion, err := clientset.Discovery().ServerVersion()
	if err != nil {
		health.Status = "Unhealthy"
		health.Components = append(health.Components, ComponentHealth{
			Name:    "API Server",
			Status:  "Unhealthy",
			Message: fmt.Sprintf("Failed to get server version: %v", err),
		})
		return health, nil
	}
	health.Components = append(health.Components, ComponentHealth{
		Name:    "API Server",
		Status:  "Healthy",
		Message: fmt.Sprintf("Version: %s", serverVersion.String()),
	})

	// Component statuses are deprecated and absent on managed clusters, so
	// a failure here is only logged.
	componentStatuses, err := clientset.CoreV1().ComponentStatuses().List(ctx, metav1.ListOptions{})
	if err != nil {
		if c.config.Logger != nil {
			c.config.Logger.Warn("failed to get component statuses", "error", err)
		}
	} else {
		for _, component := range componentStatuses.Items {
			componentHealth := ComponentHealth{
				Name:   component.Name,
				Status: "Unknown",
			}
			for _, condition := range component.Conditions {
				if condition.Type == corev1.ComponentHealthy {
					if condition.Status == corev1.ConditionTrue {
						componentHealth.Status = "Healthy"
					} else {
						componentHealth.Status = "Unhealthy"
						componentHealth.Message = condition.Message
					}
					break
				}
			}
			health.Components = append(health.Components, componentHealth)
		}
	}

	nodes, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		if c.config.Logger != nil {
			c.config.Logger.Warn("failed to list nodes", "error", err)
		}
	} else {
		for _, node := range nodes.Items {
			nodeHealth := NodeHealth{
				Name:       node.Name,
				Conditions: node.Status.Conditions,
			}
			for _, condition := range node.Status.Conditions {
				if condition.Type == corev1.NodeReady {
					nodeHealth.Ready = condition.Status == corev1.ConditionTrue
					break
				}
			}
			health.Nodes = append(health.Nodes, nodeHealth)
		}
	}

	health.Status = calculateOverallHealth(health.Components, health.Nodes)
	return health, nil
}

// calculateOverallHealth folds component and node health into a single
// verdict. An unhealthy control plane component makes the cluster
// unhealthy; losing half the nodes or any non-critical component degrades it.
func calculateOverallHealth(components []ComponentHealth, nodes []NodeHealth) string {
	criticalComponents := map[string]bool{
		"etcd":                    true,
		"kube-apiserver":          true,
		"kube-controller-manager": true,
		"kube-scheduler":          true,
	}

	for _, component := range components {
		if criticalComponents[component.Name] && component.Status == "Unhealthy" {
			return "Unhealthy"
		}
	}

	if len(nodes) > 0 {
		readyNodes := 0
		for _, node := range nodes {
			if node.Ready {
				readyNodes++
			}
		}
		if readyNodes < len(nodes)/2 {
			return "Degraded"
		}
	}

	for _, component := range components {
		if component.Status == "Unhealthy" {
			return "Degraded"
		}
	}
	return "Healthy"
}
