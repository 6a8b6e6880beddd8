package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/logic/escalator"
	"github.com/skillcoder/nodechaos-controller/internal/logic/incident"
	"github.com/skillcoder/nodechaos-controller/internal/logic/migration"
	"github.com/skillcoder/nodechaos-controller/internal/logic/resourcewatch"
)

var (
	ErrInvalidValue = errors.New("invalid config value")
	ErrBelowMinimum = errors.New("config value below minimum")
)

type Config struct {
	KubeConfig  string
	KubeMaster  string
	LogLevel    string
	LogFormat   string
	HTTPPort    string
	MetricsPort string

	PingerInterval time.Duration

	MonitorInterval  time.Duration
	MonitorNamespace string

	QuarantineNamespace string
	QuarantineThreshold int
	IncidentCapacity    int

	InventoryPath string

	SSHUser       string
	SSHPort       int
	SSHKeyPath    string
	SSHPassword   string
	SSHKnownHosts string

	RemoteCommandTimeout time.Duration
	KubeletService       string
	RuntimeService       string
	DrainDeleteQPS       float64

	ResourceWatchInterval      time.Duration
	ResourceWatchLabelSelector string
	ResourceMemoryThreshold    string
	MinPodAgeBeforeAlert       time.Duration

	MigrationEventsFile string

	// TerminationFile, when present after startup, makes the process stop itself.
	TerminationFile string
}

func Load() (*Config, error) {
	cfg := &Config{
		KubeConfig:                 getEnvWithFallback(envKeyKubeConfig, envKeyKubeConfigFallback),
		KubeMaster:                 getEnvWithFallback(envKeyKubeMaster, envKeyKubeMasterFallback),
		LogLevel:                   getEnvOrDefault(envKeyLogLevel, "info"),
		LogFormat:                  getEnvOrDefault(envKeyLogFormat, "json"),
		HTTPPort:                   getEnvOrDefault(envKeyHTTPPort, "8080"),
		MetricsPort:                getEnvOrDefault(envKeyMetricsPort, "9090"),
		QuarantineNamespace:        getEnvOrDefault(envKeyQuarantineNamespace, escalator.DefaultQuarantineNamespace),
		InventoryPath:              getEnvOrDefault(envKeyInventoryPath, "config/inventory.yaml"),
		SSHUser:                    os.Getenv(envKeySSHUser),
		SSHKeyPath:                 os.Getenv(envKeySSHKeyPath),
		SSHPassword:                os.Getenv(envKeySSHPassword),
		SSHKnownHosts:              os.Getenv(envKeySSHKnownHosts),
		KubeletService:             getEnvOrDefault(envKeyKubeletService, "kubelet"),
		RuntimeService:             getEnvOrDefault(envKeyRuntimeService, "containerd"),
		ResourceWatchLabelSelector: getEnvOrDefault(envKeyResourceWatchLabelSelector, resourcewatch.DefaultPodLabelSelector),
		ResourceMemoryThreshold:    getEnvOrDefault(envKeyResourceMemoryThreshold, resourcewatch.DefaultMemoryThreshold),
		MigrationEventsFile:        os.Getenv(envKeyMigrationEventsFile),
		TerminationFile:            getEnvOrDefault(envKeyTerminationFile, "/mnt/signal/terminating"),
	}

	// an explicitly empty value observes every namespace
	cfg.MonitorNamespace = domain.DefaultNamespace
	if v, ok := os.LookupEnv(envKeyMonitorNamespace); ok {
		cfg.MonitorNamespace = v
	}

	var err error

	cfg.PingerInterval, err = parseDuration(envKeyPingerInterval, "10s", envMinPingerInterval)
	if err != nil {
		return nil, err
	}

	cfg.MonitorInterval, err = parseDuration(envKeyMonitorInterval, migration.DefaultInterval.String(), envMinMonitorInterval)
	if err != nil {
		return nil, err
	}

	cfg.RemoteCommandTimeout, err = parseDuration(envKeyRemoteCommandTimeout, "30s", envMinRemoteCommandTimeout)
	if err != nil {
		return nil, err
	}

	cfg.ResourceWatchInterval, err = parseDuration(envKeyResourceWatchInterval, "60s", 0)
	if err != nil {
		return nil, err
	}

	cfg.MinPodAgeBeforeAlert, err = parseDuration(envKeyMinPodAgeBeforeAlert, "5m", 0)
	if err != nil {
		return nil, err
	}

	cfg.QuarantineThreshold, err = parseInt(envKeyQuarantineThreshold, escalator.DefaultQuarantineThreshold, 1)
	if err != nil {
		return nil, err
	}

	cfg.IncidentCapacity, err = parseInt(envKeyIncidentCapacity, incident.DefaultCapacity, 1)
	if err != nil {
		return nil, err
	}

	cfg.SSHPort, err = parseInt(envKeySSHPort, 0, 0)
	if err != nil {
		return nil, err
	}

	cfg.DrainDeleteQPS, err = parseFloat(envKeyDrainDeleteQPS, 5)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

func getEnvWithFallback(key, fallbackKey string) string {
	value := os.Getenv(key)
	if value == "" {
		return os.Getenv(fallbackKey)
	}

	return value
}

func parseDuration(key, defaultValue string, minValue time.Duration) (time.Duration, error) {
	raw := getEnvOrDefault(key, defaultValue)

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s=%q: %w", ErrInvalidValue, key, raw, err)
	}

	if d < 0 {
		return 0, fmt.Errorf("%w: %s=%q must not be negative", ErrInvalidValue, key, raw)
	}

	// zero disables optional loops and checks
	if d != 0 && d < minValue {
		return 0, fmt.Errorf("%w: %s=%s, minimum %s", ErrBelowMinimum, key, d, minValue)
	}

	return d, nil
}

func parseInt(key string, defaultValue, minValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s=%q: %w", ErrInvalidValue, key, raw, err)
	}

	if n < minValue {
		return 0, fmt.Errorf("%w: %s=%d, minimum %d", ErrBelowMinimum, key, n, minValue)
	}

	return n, nil
}

func parseFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%w: %s=%q must be a positive number", ErrInvalidValue, key, raw)
	}

	return f, nil
}
