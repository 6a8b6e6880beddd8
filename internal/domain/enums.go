package domain

import (
	"fmt"
	"strings"
)

// IncidentType classifies an incident record.
type IncidentType int

const (
	IncidentAlert IncidentType = iota
	IncidentEviction
	IncidentResourceThreshold
)

func (t IncidentType) String() string {
	switch t {
	case IncidentAlert:
		return "alert"
	case IncidentEviction:
		return "eviction"
	case IncidentResourceThreshold:
		return "resource"
	default:
		return fmt.Sprintf("incident(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t IncidentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseIncidentType parses an alert type. Empty input means IncidentAlert.
func ParseIncidentType(s string) (IncidentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "alert":
		return IncidentAlert, nil
	case "eviction":
		return IncidentEviction, nil
	case "resource":
		return IncidentResourceThreshold, nil
	default:
		return 0, fmt.Errorf("%w: unknown incident type %q", ErrValidation, s)
	}
}

// IsolationMethod selects the fault injector of an isolation job.
type IsolationMethod int

const (
	MethodNetwork IsolationMethod = iota
	MethodKubelet
	MethodRuntime
	MethodDrain
	MethodExtremeResource
)

func (m IsolationMethod) String() string {
	switch m {
	case MethodNetwork:
		return "network"
	case MethodKubelet:
		return "kubelet"
	case MethodRuntime:
		return "runtime"
	case MethodDrain:
		return "drain"
	case MethodExtremeResource:
		return "extreme_resource"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m IsolationMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseIsolationMethod parses a method name; "extreme" is accepted as an alias.
func ParseIsolationMethod(s string) (IsolationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "network":
		return MethodNetwork, nil
	case "kubelet":
		return MethodKubelet, nil
	case "runtime", "containerd":
		return MethodRuntime, nil
	case "drain":
		return MethodDrain, nil
	case "extreme_resource", "extreme":
		return MethodExtremeResource, nil
	default:
		return 0, fmt.Errorf("%w: unknown isolation method %q", ErrValidation, s)
	}
}

// JobStatus is the lifecycle state of an isolation job.
type JobStatus int

const (
	JobIdle JobStatus = iota
	JobRunning
	JobStopping
	JobCompleted
	JobFailed
)

func (s JobStatus) String() string {
	switch s {
	case JobIdle:
		return "idle"
	case JobRunning:
		return "running"
	case JobStopping:
		return "stopping"
	case JobCompleted:
		return "completed"
	case JobFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s JobStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition is allowed.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Stoppable reports whether stop may be requested.
func (s JobStatus) Stoppable() bool {
	return s == JobIdle || s == JobRunning
}
