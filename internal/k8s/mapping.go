package k8s

import "k8s.io/apimachinery/pkg/runtime/schema"

// builtinResources maps well-known resource type aliases to their
// GroupVersionResource. Keeping the common cases static avoids a discovery
// round trip for the vast majority of operations; anything not listed here
// (CRDs, aggregated APIs) falls back to API discovery.
var builtinResources = map[string]schema.GroupVersionResource{
	// Core/v1 resources
	"pods":                   {Group: "", Version: "v1", Resource: "pods"},
	"pod":                    {Group: "", Version: "v1", Resource: "pods"},
	"po":                     {Group: "", Version: "v1", Resource: "pods"},
	"services":               {Group: "", Version: "v1", Resource: "services"},
	"service":                {Group: "", Version: "v1", Resource: "services"},
	"svc":                    {Group: "", Version: "v1", Resource: "services"},
	"nodes":                  {Group: "", Version: "v1", Resource: "nodes"},
	"node":                   {Group: "", Version: "v1", Resource: "nodes"},
	"no":                     {Group: "", Version: "v1", Resource: "nodes"},
	"namespaces":             {Group: "", Version: "v1", Resource: "namespaces"},
	"namespace":              {Group: "", Version: "v1", Resource: "namespaces"},
	"ns":                     {Group: "", Version: "v1", Resource: "namespaces"},
	"configmaps":             {Group: "", Version: "v1", Resource: "configmaps"},
	"configmap":              {Group: "", Version: "v1", Resource: "configmaps"},
	"cm":                     {Group: "", Version: "v1", Resource: "configmaps"},
	"secrets":                {Group: "", Version: "v1", Resource: "secrets"},
	"secret":                 {Group: "", Version: "v1", Resource: "secrets"},
	"serviceaccounts":        {Group: "", Version: "v1", Resource: "serviceaccounts"},
	"serviceaccount":         {Group: "", Version: "v1", Resource: "serviceaccounts"},
	"sa":                     {Group: "", Version: "v1", Resource: "serviceaccounts"},
	"events":                 {Group: "", Version: "v1", Resource: "events"},
	"event":                  {Group: "", Version: "v1", Resource: "events"},
	"endpoints":              {Group: "", Version: "v1", Resource: "endpoints"},
	"persistentvolumes":      {Group: "", Version: "v1", Resource: "persistentvolumes"},
	"persistentvolume":       {Group: "", Version: "v1", Resource: "persistentvolumes"},
	"pv":                     {Group: "", Version: "v1", Resource: "persistentvolumes"},
	"persistentvolumeclaims": {Group: "", Version: "v1", Resource: "persistentvolumeclaims"},
	"persistentvolumeclaim":  {Group: "", Version: "v1", Resource: "persistentvolumeclaims"},
	"pvc":                    {Group: "", Version: "v1", Resource: "persistentvolumeclaims"},

	// apps/v1 resources
	"deployments":  {Group: "apps", Version: "v1", Resource: "deployments"},
	"deployment":   {Group: "apps", Version: "v1", Resource: "deployments"},
	"deploy":       {Group: "apps", Version: "v1", Resource: "deployments"},
	"replicasets":  {Group: "apps", Version: "v1", Resource: "replicasets"},
	"replicaset":   {Group: "apps", Version: "v1", Resource: "replicasets"},
	"rs":           {Group: "apps", Version: "v1", Resource: "replicasets"},
	"daemonsets":   {Group: "apps", Version: "v1", Resource: "daemonsets"},
	"daemonset":    {Group: "apps", Version: "v1", Resource: "daemonsets"},
	"ds":           {Group: "apps", Version: "v1", Resource: "daemonsets"},
	"statefulsets": {Group: "apps", Version: "v1", Resource: "statefulsets"},
	"statefulset":  {Group: "apps", Version: "v1", Resource: "statefulsets"},
	"sts":          {Group: "apps", Version: "v1", Resource: "statefulsets"},

	// batch resources
	"jobs":     {Group: "batch", Version: "v1", Resource: "jobs"},
	"job":      {Group: "batch", Version: "v1", Resource: "jobs"},
	"cronjobs": {Group: "batch", Version: "v1", Resource: "cronjobs"},
	"cronjob":  {Group: "batch", Version: "v1", Resource: "cronjobs"},
	"cj":       {Group: "batch", Version: "v1", Resource: "cronjobs"},

	// networking.k8s.io resources
	"ingresses":       {Group: "networking.k8s.io", Version: "v1", Resource: "ingresses"},
	"ingress":         {Group: "networking.k8s.io", Version: "v1", Resource: "ingresses"},
	"ing":             {Group: "networking.k8s.io", Version: "v1", Resource: "ingresses"},
	"networkpolicies": {Group: "networking.k8s.io", Version: "v1", Resource: "networkpolicies"},
	"networkpolicy":   {Group: "networking.k8s.io", Version: "v1", Resource: "networkpolicies"},
	"netpol":          {Group: "networking.k8s.io", Version: "v1", Resource: "networkpolicies"},

	// rbac.authorization.k8s.io resources
	"roles":               {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "roles"},
	"role":                {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "roles"},
	"rolebindings":        {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "rolebindings"},
	"rolebinding":         {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "rolebindings"},
	"clusterroles":        {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterroles"},
	"clusterrole":         {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterroles"},
	"clusterrolebindings": {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterrolebindings"},
	"clusterrolebinding":  {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterrolebindings"},

	// autoscaling resources
	"horizontalpodautoscalers": {Group: "autoscaling", Version: "v2", Resource: "horizontalpodautoscalers"},
	"horizontalpodautoscaler":  {Group: "autoscaling", Version: "v2", Resource: "horizontalpodautoscalers"},
	"hpa":                      {Group: "autoscaling", Version: "v2", Resource: "horizontalpodautoscalers"},

	// policy resources
	"poddisruptionbudgets": {Group: "policy", Version: "v1", Resource: "poddisruptionbudgets"},
	"poddisruptionbudget":  {Group: "policy", Version: "v1", Resource: "poddisruptionbudgets"},
	"pdb":                  {Group: "policy", Version: "v1", Resource: "poddisruptionbudgets"},

	// storage.k8s.io resources
	"storageclasses": {Group: "storage.k8s.io", Version: "v1", Resource: "storageclasses"},
	"storageclass":   {Group: "storage.k8s.io", Version: "v1", Resource: "storageclasses"},
	"sc":             {Group: "storage.k8s.io", Version: "v1", Resource: "storageclasses"},

	// apiextensions.k8s.io resources
	"customresourcedefinitions": {Group: "apiextensions.k8s.io", Version: "v1", Resource: "customresourcedefinitions"},
	"customresourcedefinition":  {Group: "apiextensions.k8s.io", Version: "v1", Resource: "customresourcedefinitions"},
	"crds":                      {Group: "apiextensions.k8s.io", Version: "v1", Resource: "customresourcedefinitions"},
	"crd":                       {Group: "apiextensions.k8s.io", Version: "v1", Resource: "customresourcedefinitions"},
}

// clusterScopedResources lists builtin resources that live outside any
// namespace. Resources discovered from the API carry their own scope flag.
var clusterScopedResources = map[string]bool{
	"nodes":                           true,
	"persistentvolumes":               true,
	"clusterroles":                    true,
	"clusterrolebindings":             true,
	"namespaces":                      true,
	"storageclasses":                  true,
	"ingressclasses":                  true,
	"priorityclasses":                 true,
	"runtimeclasses":                  true,
	"volumeattachments":               true,
	"csidrivers":                      true,
	"csinodes":                        true,
	"mutatingwebhookconfigurations":   true,
	"validatingwebhookconfigurations": true,
	"customresourcedefinitions":       true,
	"apiservices":                     true,
}
