package domain

// KubeStatus captures contextual Kubernetes data read from kubeconfig.
type KubeStatus struct {
	ConfigPath string
	Context    string
	Cluster    string
	Namespace  string
	Contexts   []string
}
