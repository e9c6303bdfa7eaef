// Package kubeconfig reports the active kubeconfig context without calling kubectl.
package kubeconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"k8s.io/client-go/tools/clientcmd"

	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/ports"
)

// Reader loads kubeconfig with the standard precedence ($KUBECONFIG, then
// ~/.kube/config) unless an explicit path is given.
type Reader struct {
	explicitPath string
}

// NewReader builds a reader. An empty path uses the default loading rules.
func NewReader(path string) *Reader {
	return &Reader{explicitPath: path}
}

// Current implements ports.KubeContextReader.
func (r *Reader) Current() (domain.KubeStatus, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if r.explicitPath != "" {
		rules.ExplicitPath = r.explicitPath
	}
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{})

	raw, err := clientConfig.RawConfig()
	if err != nil {
		return domain.KubeStatus{}, fmt.Errorf("load kubeconfig: %w", err)
	}

	status := domain.KubeStatus{
		ConfigPath: configPath(rules),
		Context:    raw.CurrentContext,
	}
	for name := range raw.Contexts {
		status.Contexts = append(status.Contexts, name)
	}
	sort.Strings(status.Contexts)

	if status.Context == "" {
		return status, errors.New("kubeconfig has no current context")
	}
	current, ok := raw.Contexts[status.Context]
	if !ok {
		return status, fmt.Errorf("current context %q not found in kubeconfig", status.Context)
	}
	status.Cluster = current.Cluster

	namespace, _, err := clientConfig.Namespace()
	if err != nil {
		return status, fmt.Errorf("resolve namespace: %w", err)
	}
	status.Namespace = namespace
	return status, nil
}

func configPath(rules *clientcmd.ClientConfigLoadingRules) string {
	if rules.ExplicitPath != "" {
		return rules.ExplicitPath
	}
	precedence := rules.GetLoadingPrecedence()
	if len(precedence) == 0 {
		return ""
	}
	return filepath.Clean(precedence[0])
}

var _ ports.KubeContextReader = (*Reader)(nil)
