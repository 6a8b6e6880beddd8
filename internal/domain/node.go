package domain

// DefaultAPIServerPort is the Kubernetes API port used when the inventory omits it.
const DefaultAPIServerPort = 6443

// NodeTarget is everything needed to inject faults into a node.
type NodeTarget struct {
	Name string

	// Host is the address remote commands are sent to.
	Host string

	// ControlPlaneAddresses are blocked by network isolation.
	ControlPlaneAddresses []string
	APIServerPort         int
}

// Node is the cluster-agnostic view of a node.
type Node struct {
	Name           string   `json:"name"`
	Ready          bool     `json:"ready"`
	Unschedulable  bool     `json:"unschedulable"`
	InternalIP     string   `json:"internalIp,omitempty"`
	KubeletVersion string   `json:"kubeletVersion,omitempty"`
	Roles          []string `json:"roles,omitempty"`
}

// DrainResult summarizes a cordon-and-evict node drain.
type DrainResult struct {
	NodeName string   `json:"nodeName"`
	Evicted  []string `json:"evicted"`
	Skipped  []string `json:"skipped"`
	Failed   []string `json:"failed"`
}
