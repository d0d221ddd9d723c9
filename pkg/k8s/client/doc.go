// Package client provides the Kubernetes client used to read catalogs from
// and write reports to ConfigMaps.
//
// The default client is built once on first use and shared:
//
//	cs, err := client.Get()
//	cm, err := cs.CoreV1().ConfigMaps("recipes").Get(ctx, "base", metav1.GetOptions{})
//
// Configuration is discovered from, in order, an explicit kubeconfig path,
// the KUBECONFIG environment variable, ~/.kube/config and finally the
// in-cluster service account.
//
// Tests and embedders replace the default with Override, typically with a
// fake clientset:
//
//	restore := client.Override(fake.NewSimpleClientset(objs...))
//	defer restore()
package client
