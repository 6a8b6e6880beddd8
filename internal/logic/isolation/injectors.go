package isolation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

// injector applies one isolation method. rollback is only called after apply has returned.
type injector interface {
	apply(ctx context.Context) (string, error)
	rollback(ctx context.Context) error
}

func (o *Orchestrator) newInjector(job Job, target domain.NodeTarget) injector {
	switch job.Method {
	case domain.MethodNetwork:
		return &networkInjector{o: o, target: target}
	case domain.MethodKubelet:
		return &serviceInjector{o: o, target: target, service: o.opts.KubeletService}
	case domain.MethodRuntime:
		return &serviceInjector{o: o, target: target, service: o.opts.RuntimeService}
	case domain.MethodDrain:
		return &drainInjector{o: o, node: job.NodeName}
	case domain.MethodExtremeResource:
		return &extremeInjector{o: o, target: target, jobID: job.ID, seconds: job.Duration}
	default:
		return nil
	}
}

func blockCommand(address string, port int) string {
	return fmt.Sprintf("iptables -A OUTPUT -p tcp -d %s --dport %d -j DROP", address, port)
}

func unblockCommand(address string, port int) string {
	return fmt.Sprintf("iptables -D OUTPUT -p tcp -d %s --dport %d -j DROP", address, port)
}

// networkInjector drops traffic from the node to every control plane address.
type networkInjector struct {
	o      *Orchestrator
	target domain.NodeTarget

	mu      sync.Mutex
	blocked []string
}

func (n *networkInjector) apply(ctx context.Context) (string, error) {
	if len(n.target.ControlPlaneAddresses) == 0 {
		return "", fmt.Errorf("%w: no control plane addresses for node %s", domain.ErrValidation, n.target.Name)
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	for _, address := range n.target.ControlPlaneAddresses {
		g.Go(func() error {
			_, err := n.o.run(ctx, n.target.Host, blockCommand(address, n.target.APIServerPort))
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("block %s: %w", address, err))
				mu.Unlock()

				return err
			}

			n.mu.Lock()
			n.blocked = append(n.blocked, address)
			n.mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}

	return fmt.Sprintf("blocked %d control plane addresses on port %d",
		len(n.target.ControlPlaneAddresses), n.target.APIServerPort), nil
}

// rollback removes only the rules that were added.
func (n *networkInjector) rollback(ctx context.Context) error {
	n.mu.Lock()
	blocked := append([]string(nil), n.blocked...)
	n.blocked = nil
	n.mu.Unlock()

	var errs []error

	for _, address := range blocked {
		_, err := n.o.run(ctx, n.target.Host, unblockCommand(address, n.target.APIServerPort))
		if err != nil {
			errs = append(errs, fmt.Errorf("unblock %s: %w", address, err))
		}
	}

	return errors.Join(errs...)
}

// serviceInjector stops a systemd unit and starts it again on rollback.
type serviceInjector struct {
	o       *Orchestrator
	target  domain.NodeTarget
	service string
}

func (s *serviceInjector) apply(ctx context.Context) (string, error) {
	_, err := s.o.run(ctx, s.target.Host, "systemctl stop "+s.service)
	if err != nil {
		return "", fmt.Errorf("stop %s: %w", s.service, err)
	}

	return "stopped " + s.service, nil
}

func (s *serviceInjector) rollback(ctx context.Context) error {
	_, err := s.o.run(ctx, s.target.Host, "systemctl start "+s.service)
	if err != nil {
		return fmt.Errorf("start %s: %w", s.service, err)
	}

	return nil
}

// drainInjector deletes every pod on the node without cordoning it.
type drainInjector struct {
	o    *Orchestrator
	node string
}

func (d *drainInjector) apply(ctx context.Context) (string, error) {
	report, err := d.o.drain(ctx, d.node)
	if err != nil {
		return "", err
	}

	msg := fmt.Sprintf("deleted %d/%d pods", report.Deleted, report.Total)
	if len(report.Failed) > 0 {
		msg += ", failed: " + strings.Join(report.Failed, ", ")
	}

	return msg, nil
}

func (d *drainInjector) rollback(context.Context) error {
	return nil
}

// drain deletes pods one by one with zero grace. A failed delete does not stop the loop.
func (o *Orchestrator) drain(ctx context.Context, node string) (DrainReport, error) {
	report := DrainReport{NodeName: node}

	pods, err := o.gateway.ListPods(ctx, domain.PodFilter{NodeName: node})
	if err != nil {
		return report, fmt.Errorf("list pods on node %s: %w", node, err)
	}

	report.Total = len(pods)
	limiter := rate.NewLimiter(rate.Limit(o.opts.DrainQPS), 1)

	for i := range pods {
		if err := limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("drain node %s: %w", node, err)
		}

		key := pods[i].Key()

		err := o.gateway.DeletePod(ctx, key.Namespace, key.Name)
		if err != nil {
			o.logger.WarnContext(ctx, "drain: delete pod failed",
				"node", node,
				"namespace", key.Namespace,
				"pod", key.Name,
				"reason", err,
			)

			report.Failed = append(report.Failed, key.String())

			continue
		}

		report.Deleted++
	}

	return report, nil
}

// extremeInjector saturates node memory with a self-terminating stress process.
type extremeInjector struct {
	o       *Orchestrator
	target  domain.NodeTarget
	jobID   string
	seconds int
}

const memAvailableCommand = "awk '/^MemAvailable:/ {print $2}' /proc/meminfo"

func stressCommand(kib int64, seconds int) string {
	return fmt.Sprintf("stress-ng --vm 1 --vm-bytes %dK --vm-keep --timeout %ds", kib, seconds)
}

func (e *extremeInjector) apply(ctx context.Context) (string, error) {
	res, err := e.o.run(ctx, e.target.Host, memAvailableCommand)
	if err != nil {
		return "", fmt.Errorf("read available memory: %w", err)
	}

	availableKiB, err := strconv.ParseInt(strings.TrimSpace(res.Stdout), 10, 64)
	if err != nil || availableKiB <= 0 {
		return "", fmt.Errorf("%w: unexpected MemAvailable output %q", domain.ErrRemoteExecution, res.Stdout)
	}

	kib := int64(float64(availableKiB) * e.o.opts.MemoryFraction)

	err = e.o.startBackground(ctx, e.jobID, e.target.Host, stressCommand(kib, e.seconds))
	if err != nil {
		return "", fmt.Errorf("start memory stress: %w", err)
	}

	return fmt.Sprintf("allocating %d KiB for %ds", kib, e.seconds), nil
}

// rollback is a no-op: the stress process ends on its own timeout.
func (e *extremeInjector) rollback(context.Context) error {
	return nil
}
