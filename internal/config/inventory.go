package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

// Host is a node entry of the inventory.
type Host struct {
	Hostname  string `yaml:"hostname"`
	PrivateIP string `yaml:"private_ip" validate:"omitempty,ip"`
	PublicIP  string `yaml:"public_ip"  validate:"omitempty,ip"`
}

// Address returns the address remote commands are sent to.
func (h Host) Address() string {
	switch {
	case h.PrivateIP != "":
		return h.PrivateIP
	case h.PublicIP != "":
		return h.PublicIP
	default:
		return h.Hostname
	}
}

type LoadBalancer struct {
	Hostname      string `yaml:"hostname"`
	PrivateIP     string `yaml:"private_ip"      validate:"omitempty,ip"`
	APIServerPort int    `yaml:"api_server_port" validate:"omitempty,min=1,max=65535"`
}

type SSH struct {
	User     string `yaml:"user"`
	Port     int    `yaml:"port"     validate:"omitempty,min=1,max=65535"`
	KeyPath  string `yaml:"key_path"`
	Password string `yaml:"password"`
}

// Experiment is a scheduled isolation run.
type Experiment struct {
	Name     string `yaml:"name"     validate:"required"`
	Schedule string `yaml:"schedule" validate:"required"`
	TZ       string `yaml:"tz"`
	Node     string `yaml:"node"     validate:"required"`
	Method   string `yaml:"method"   validate:"required"`
	Duration int    `yaml:"duration" validate:"min=10,max=3600"`
}

type Cluster struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Inventory describes the nodes reachable over SSH and the scheduled experiments.
type Inventory struct {
	Cluster      Cluster         `yaml:"cluster"`
	Masters      map[string]Host `yaml:"masters"      validate:"dive"`
	Workers      map[string]Host `yaml:"workers"      validate:"dive"`
	LoadBalancer LoadBalancer    `yaml:"loadbalancer"`
	SSH          SSH             `yaml:"ssh"`
	Experiments  []Experiment    `yaml:"experiments"  validate:"dive"`
}

var _validate = validator.New(validator.WithRequiredStructEnabled())

// LoadInventory reads and validates the inventory file.
func LoadInventory(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}

	return ParseInventory(data)
}

// ParseInventory decodes inventory YAML.
func ParseInventory(data []byte) (*Inventory, error) {
	inv := &Inventory{}

	err := yaml.Unmarshal(data, inv)
	if err != nil {
		return nil, fmt.Errorf("%w: decode inventory: %w", ErrInvalidValue, err)
	}

	err = _validate.Struct(inv)
	if err != nil {
		return nil, fmt.Errorf("%w: inventory: %w", ErrInvalidValue, err)
	}

	seen := make(map[string]struct{}, len(inv.Experiments))

	for _, exp := range inv.Experiments {
		if _, ok := seen[exp.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate experiment %q", ErrInvalidValue, exp.Name)
		}

		seen[exp.Name] = struct{}{}
	}

	return inv, nil
}

// ResolveNode maps a node name to its remote target. The name matches
// either the inventory key or the hostname of a master or worker.
func (inv *Inventory) ResolveNode(name string) (domain.NodeTarget, error) {
	host, ok := lookupHost(inv.Masters, name)
	if !ok {
		host, ok = lookupHost(inv.Workers, name)
	}

	if !ok {
		return domain.NodeTarget{}, fmt.Errorf("%w: node %q is not in the inventory", domain.ErrNotFound, name)
	}

	port := inv.LoadBalancer.APIServerPort
	if port == 0 {
		port = domain.DefaultAPIServerPort
	}

	return domain.NodeTarget{
		Name:                  name,
		Host:                  host.Address(),
		ControlPlaneAddresses: inv.ControlPlaneAddresses(),
		APIServerPort:         port,
	}, nil
}

// ControlPlaneAddresses returns every master private IP and the load balancer IP, sorted and deduplicated.
func (inv *Inventory) ControlPlaneAddresses() []string {
	set := make(map[string]struct{}, len(inv.Masters)+1)

	for _, m := range inv.Masters {
		if m.PrivateIP != "" {
			set[m.PrivateIP] = struct{}{}
		}
	}

	if inv.LoadBalancer.PrivateIP != "" {
		set[inv.LoadBalancer.PrivateIP] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}

	sort.Strings(out)

	return out
}

// NodeNames lists every master and worker key.
func (inv *Inventory) NodeNames() []string {
	out := make([]string, 0, len(inv.Masters)+len(inv.Workers))

	for name := range inv.Masters {
		out = append(out, name)
	}

	for name := range inv.Workers {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// SSHWithOverrides returns the inventory ssh block with non-empty overrides applied.
func (inv *Inventory) SSHWithOverrides(user string, port int, keyPath, password string) SSH {
	out := inv.SSH

	if user != "" {
		out.User = user
	}

	if port != 0 {
		out.Port = port
	}

	if keyPath != "" {
		out.KeyPath = keyPath
	}

	if password != "" {
		out.Password = password
	}

	if out.User == "" {
		out.User = "root"
	}

	out.KeyPath = expandHome(out.KeyPath)

	return out
}

func lookupHost(hosts map[string]Host, name string) (Host, bool) {
	if h, ok := hosts[name]; ok {
		return h, true
	}

	for _, h := range hosts {
		if h.Hostname == name {
			return h, true
		}
	}

	return Host{}, false
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, rest)
}
