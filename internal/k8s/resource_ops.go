package k8s

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// parseGroupVersion splits an apiVersion string into group and version.
func parseGroupVersion(apiVersion string) (group, version string) {
	if idx := strings.Index(apiVersion, "/"); idx >= 0 {
		return apiVersion[:idx], apiVersion[idx+1:]
	}
	return "", apiVersion
}

// groupsMatch compares a requested API group against a discovered one. An
// empty request matches anything so that bare resource types keep working.
func groupsMatch(requested, actual string) bool {
	if requested == "" {
		return true
	}
	if requested == "core" && actual == "" {
		return true
	}
	return strings.EqualFold(requested, actual)
}

// parseAPIGroup accepts either a bare group name or a group/version pair and
// returns the two parts.
func parseAPIGroup(apiGroup string) (group, version string) {
	if idx := strings.Index(apiGroup, "/"); idx >= 0 {
		return apiGroup[:idx], apiGroup[idx+1:]
	}
	return apiGroup, ""
}

// resolveResourceType maps a resource type name or alias to its
// GroupVersionResource. Builtin types resolve from the static table; unknown
// types fall back to API discovery so custom resources work as well. An
// apiGroup argument disambiguates names that exist in more than one group.
func (c *kubernetesClient) resolveResourceType(ctx context.Context, contextName, resourceType, apiGroup string) (schema.GroupVersionResource, error) {
	resourceType = strings.ToLower(strings.TrimSpace(resourceType))
	if resourceType == "" {
		return schema.GroupVersionResource{}, fmt.Errorf("resource type is required")
	}

	requestedGroup, requestedVersion := parseAPIGroup(apiGroup)

	if gvr, ok := builtinResources[resourceType]; ok && groupsMatch(requestedGroup, gvr.Group) {
		if requestedVersion != "" {
			gvr.Version = requestedVersion
		}
		return gvr, nil
	}

	return c.discoverResourceType(ctx, contextName, resourceType, requestedGroup, requestedVersion)
}

// discoverResourceType scans the server's preferred resources for a name,
// singular name, or short name match.
func (c *kubernetesClient) discoverResourceType(ctx context.Context, contextName, resourceType, group, version string) (schema.GroupVersionResource, error) {
	discoveryClient, err := c.getDiscoveryClient(contextName)
	if err != nil {
		return schema.GroupVersionResource{}, err
	}

	resourceLists, err := discoveryClient.ServerPreferredResources()
	if err != nil && len(resourceLists) == 0 {
		return schema.GroupVersionResource{}, fmt.Errorf("failed to discover API resources: %w", err)
	}

	for _, list := range resourceLists {
		if list == nil {
			continue
		}
		listGroup, listVersion := parseGroupVersion(list.GroupVersion)
		if !groupsMatch(group, listGroup) {
			continue
		}
		if version != "" && version != listVersion {
			continue
		}
		for _, apiResource := range list.APIResources {
			if !resourceMatches(apiResource, resourceType) {
				continue
			}
			return schema.GroupVersionResource{
				Group:    listGroup,
				Version:  listVersion,
				Resource: apiResource.Name,
			}, nil
		}
	}

	if group != "" {
		return schema.GroupVersionResource{}, fmt.Errorf("resource type %q not found in API group %q", resourceType, group)
	}
	return schema.GroupVersionResource{}, fmt.Errorf("resource type %q not found on the cluster", resourceType)
}

// resourceMatches checks a discovered API resource against a requested name,
// accepting the plural name, singular name, kind, or any short name.
func resourceMatches(apiResource metav1.APIResource, resourceType string) bool {
	if strings.EqualFold(apiResource.Name, resourceType) ||
		strings.EqualFold(apiResource.SingularName, resourceType) ||
		strings.EqualFold(apiResource.Kind, resourceType) {
		return true
	}
	for _, short := range apiResource.ShortNames {
		if strings.EqualFold(short, resourceType) {
			return true
		}
	}
	return false
}

// resolveGVRFromObject maps an object's apiVersion and kind to the resource
// it is served under. The apiVersion is honored exactly so that declarative
// definitions pin the version they were written against.
func (c *kubernetesClient) resolveGVRFromObject(ctx context.Context, contextName string, obj *unstructured.Unstructured) (schema.GroupVersionResource, error) {
	apiVersion := obj.GetAPIVersion()
	kind := obj.GetKind()
	if apiVersion == "" || kind == "" {
		return schema.GroupVersionResource{}, fmt.Errorf("resource definition must set apiVersion and kind")
	}

	group, version := parseGroupVersion(apiVersion)

	discoveryClient, err := c.getDiscoveryClient(contextName)
	if err != nil {
		return schema.GroupVersionResource{}, err
	}

	resourceList, err := discoveryClient.ServerResourcesForGroupVersion(apiVersion)
	if err != nil {
		return schema.GroupVersionResource{}, fmt.Errorf("failed to discover resources for %s: %w", apiVersion, err)
	}

	for _, apiResource := range resourceList.APIResources {
		// Skip subresources like deployments/status.
		if strings.Contains(apiResource.Name, "/") {
			continue
		}
		if apiResource.Kind == kind {
			return schema.GroupVersionResource{
				Group:    group,
				Version:  version,
				Resource: apiResource.Name,
			}, nil
		}
	}

	return schema.GroupVersionResource{}, fmt.Errorf("kind %q is not served by %s", kind, apiVersion)
}

// isResourceNamespaced reports whether a resource lives in a namespace.
// Builtin resources answer from the static scope table; anything else is
// looked up through discovery.
func (c *kubernetesClient) isResourceNamespaced(ctx context.Context, contextName string, gvr schema.GroupVersionResource) (bool, error) {
	if clusterScopedResources[gvr.Resource] {
		return false, nil
	}
	if _, ok := builtinResources[gvr.Resource]; ok {
		return true, nil
	}

	discoveryClient, err := c.getDiscoveryClient(contextName)
	if err != nil {
		return false, err
	}

	groupVersion := gvr.Version
	if gvr.Group != "" {
		groupVersion = gvr.Group + "/" + gvr.Version
	}

	resourceList, err := discoveryClient.ServerResourcesForGroupVersion(groupVersion)
	if err != nil {
		// Unknown to discovery; most resources are namespaced so that is
		// the safer assumption.
		return true, nil
	}

	for _, apiResource := range resourceList.APIResources {
		if apiResource.Name == gvr.Resource {
			return apiResource.Namespaced, nil
		}
	}
	return true, nil
}

// isNamespacedKind reports whether an object's kind is namespaced, using the
// object's own apiVersion for the discovery lookup.
func (c *kubernetesClient) isNamespacedKind(ctx context.Context, contextName string, obj *unstructured.Unstructured) (bool, error) {
	gvr, err := c.resolveGVRFromObject(ctx, contextName, obj)
	if err != nil {
		return false, err
	}
	return c.isResourceNamespaced(ctx, contextName, gvr)
}
