package config

import "time"

// Env key constants. All controller configuration env vars use NODECHAOS_ prefix;
// duration values support explicit units (e.g. 5m, 40s, 2h).

// Path to kubeconfig file. If unset, KUBECONFIG is used as fallback.
const envKeyKubeConfig = "NODECHAOS_KUBECONFIG"

// Kubernetes API server URL. If unset, KUBERNETES_MASTER is used as fallback.
const envKeyKubeMaster = "NODECHAOS_KUBE_MASTER"

// Log level: debug, info, warn, error.
const envKeyLogLevel = "NODECHAOS_LOG_LEVEL"

// Log format: json or text.
const envKeyLogFormat = "NODECHAOS_LOG_FORMAT"

// Port for the API and health HTTP server.
const envKeyHTTPPort = "NODECHAOS_HTTP_PORT"

// Port for Prometheus metrics (GET /metrics).
const envKeyMetricsPort = "NODECHAOS_METRICS_PORT"

// Pinger check interval. Units: s, m, h (e.g. 10s, 1m).
const (
	envKeyPingerInterval = "NODECHAOS_PINGER_INTERVAL"
	envMinPingerInterval = time.Second
)

// Migration monitor tick.
const (
	envKeyMonitorInterval = "NODECHAOS_MONITOR_INTERVAL"
	envMinMonitorInterval = time.Second
)

// Namespace observed by the migration monitor; empty observes all namespaces.
const envKeyMonitorNamespace = "NODECHAOS_MONITOR_NAMESPACE"

const envKeyQuarantineNamespace = "NODECHAOS_QUARANTINE_NAMESPACE"

// Consecutive alerts before a pod is quarantined instead of restarted.
const envKeyQuarantineThreshold = "NODECHAOS_QUARANTINE_THRESHOLD"

// Incident records kept in memory; the oldest is dropped first.
const envKeyIncidentCapacity = "NODECHAOS_INCIDENT_CAPACITY"

// Node inventory YAML with SSH targets and scheduled experiments.
const envKeyInventoryPath = "NODECHAOS_INVENTORY_PATH"

// SSH settings. Non-empty values override the inventory ssh block.
const (
	envKeySSHUser       = "NODECHAOS_SSH_USER"
	envKeySSHPort       = "NODECHAOS_SSH_PORT"
	envKeySSHKeyPath    = "NODECHAOS_SSH_KEY_PATH"
	envKeySSHPassword   = "NODECHAOS_SSH_PASSWORD" //nolint:gosec // env key name, not a secret
	envKeySSHKnownHosts = "NODECHAOS_SSH_KNOWN_HOSTS"
)

// Bound for a single remote command.
const (
	envKeyRemoteCommandTimeout = "NODECHAOS_REMOTE_COMMAND_TIMEOUT"
	envMinRemoteCommandTimeout = time.Second
)

// systemd units stopped by kubelet and runtime isolation.
const (
	envKeyKubeletService = "NODECHAOS_KUBELET_SERVICE"
	envKeyRuntimeService = "NODECHAOS_RUNTIME_SERVICE"
)

// Pod deletions per second during drain isolation.
const envKeyDrainDeleteQPS = "NODECHAOS_DRAIN_DELETE_QPS"

// Resource watcher tick; 0 disables the watcher.
const envKeyResourceWatchInterval = "NODECHAOS_RESOURCE_WATCH_INTERVAL"

// Label selector of pods checked by the resource watcher.
const envKeyResourceWatchLabelSelector = "NODECHAOS_RESOURCE_WATCH_LABEL_SELECTOR"

// Default memory threshold: absolute quantity (512Mi) or percent of limit (90%).
const envKeyResourceMemoryThreshold = "NODECHAOS_RESOURCE_MEMORY_THRESHOLD"

// Minimum pod age before a resource alert is raised; 0 disables the check.
const envKeyMinPodAgeBeforeAlert = "NODECHAOS_MIN_POD_AGE_BEFORE_ALERT"

// Optional JSON lines file receiving every migration event.
const envKeyMigrationEventsFile = "NODECHAOS_MIGRATION_EVENTS_FILE"

// File whose presence after startup triggers a graceful stop; empty disables the check.
const envKeyTerminationFile = "NODECHAOS_TERMINATION_FILE"

// Standard k8s env keys used as fallback when NODECHAOS_* are unset.
const (
	envKeyKubeConfigFallback = "KUBECONFIG"
	envKeyKubeMasterFallback = "KUBERNETES_MASTER"
)
