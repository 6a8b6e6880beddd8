package k8s

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

const nodeRoleLabelPrefix = "node-role.kubernetes.io/"

func toDomainPod(pod *corev1.Pod) domain.Pod {
	out := domain.Pod{
		Name:        pod.Name,
		Namespace:   pod.Namespace,
		NodeName:    pod.Spec.NodeName,
		Phase:       string(pod.Status.Phase),
		CreatedAt:   pod.CreationTimestamp.Time,
		Labels:      pod.Labels,
		Annotations: pod.Annotations,
	}

	for i := range pod.Status.Conditions {
		if pod.Status.Conditions[i].Type == corev1.PodReady {
			out.Ready = pod.Status.Conditions[i].Status == corev1.ConditionTrue
		}
	}

	for i := range pod.Status.ContainerStatuses {
		out.RestartCount += pod.Status.ContainerStatuses[i].RestartCount
	}

	totalLimit := resource.NewQuantity(0, resource.BinarySI)
	hasLimit := false

	for i := range pod.Spec.Containers {
		if limit, ok := pod.Spec.Containers[i].Resources.Limits[corev1.ResourceMemory]; ok {
			totalLimit.Add(limit)

			hasLimit = true
		}
	}

	if hasLimit {
		out.MemoryLimit = totalLimit
	}

	return out
}

func toDomainNode(node *corev1.Node) domain.Node {
	out := domain.Node{
		Name:           node.Name,
		Unschedulable:  node.Spec.Unschedulable,
		KubeletVersion: node.Status.NodeInfo.KubeletVersion,
	}

	for i := range node.Status.Conditions {
		if node.Status.Conditions[i].Type == corev1.NodeReady {
			out.Ready = node.Status.Conditions[i].Status == corev1.ConditionTrue
		}
	}

	for i := range node.Status.Addresses {
		if node.Status.Addresses[i].Type == corev1.NodeInternalIP {
			out.InternalIP = node.Status.Addresses[i].Address

			break
		}
	}

	for label := range node.Labels {
		if role, ok := strings.CutPrefix(label, nodeRoleLabelPrefix); ok && role != "" {
			out.Roles = append(out.Roles, role)
		}
	}

	sort.Strings(out.Roles)

	return out
}

// isDrainExempt reports pods a drain must leave in place: DaemonSet members
// are recreated on the same node and mirror pods belong to the kubelet.
func isDrainExempt(pod *corev1.Pod) bool {
	if _, ok := pod.Annotations[corev1.MirrorPodAnnotationKey]; ok {
		return true
	}

	for i := range pod.OwnerReferences {
		if pod.OwnerReferences[i].Kind == "DaemonSet" {
			return true
		}
	}

	return false
}

func isTerminated(pod *corev1.Pod) bool {
	return pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed
}

func toDomainPodMetrics(
	ctx context.Context,
	logger *slog.Logger,
	podMetrics *metricsv1beta1.PodMetrics,
) *domain.PodMetrics {
	memoryUsage := resource.NewQuantity(0, resource.BinarySI)

	for i := range podMetrics.Containers {
		containerMemoryUsage := podMetrics.Containers[i].Usage.Memory()
		if containerMemoryUsage == nil {
			logger.WarnContext(ctx, "container memory usage is nil, skipping",
				"pod", podMetrics.Name,
				"namespace", podMetrics.Namespace,
				"container", podMetrics.Containers[i].Name,
			)

			continue
		}

		memoryUsage.Add(*containerMemoryUsage)
		logger.DebugContext(ctx, "container metrics",
			"pod", podMetrics.Name,
			"namespace", podMetrics.Namespace,
			"container", podMetrics.Containers[i].Name,
			"memory", containerMemoryUsage.String(),
		)
	}

	return &domain.PodMetrics{
		MemoryUsage: memoryUsage,
	}
}
