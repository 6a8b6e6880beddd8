package k8s

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	corev1 "k8s.io/api/core/v1"
	policy "k8s.io/api/policy/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

const (
	evictionKind       = "Eviction"
	evictionAPIVersion = "policy/v1"

	// AnnotationQuarantinedFrom records the namespace a quarantined pod was moved out of.
	AnnotationQuarantinedFrom = "nodechaos.k8s.skillcoder.com/quarantined-from"

	// AnnotationCordonedBy marks nodes cordoned by the controller.
	AnnotationCordonedBy = "nodechaos.k8s.skillcoder.com/cordoned-by"

	cordonedByValue      = "nodechaos-controller"
	serviceAccountVolume = "kube-api-access-"
)

// Adapter is the cluster gateway backed by the Kubernetes API.
type Adapter struct {
	logger           *slog.Logger
	clientset        kubernetes.Interface
	metricsClientset metricsv.Interface
}

// New creates a new K8s adapter.
func New(
	logger *slog.Logger,
	clientset kubernetes.Interface,
	metricsClientset metricsv.Interface,
) *Adapter {
	return &Adapter{
		logger:           logger.With("component", "k8s-adapter"),
		clientset:        clientset,
		metricsClientset: metricsClientset,
	}
}

// Name returns the name used for health pings
func (a *Adapter) Name() string {
	return "kubernetes-api"
}

// Ping checks that the API server answers.
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{Limit: 1})
	if err != nil {
		return fmt.Errorf("ping kubernetes api: %w", err)
	}

	return nil
}

// ListPods lists pods matching the filter. An empty namespace lists all namespaces.
func (a *Adapter) ListPods(
	ctx context.Context,
	filter domain.PodFilter,
) ([]domain.Pod, error) {
	opts := metav1.ListOptions{
		LabelSelector: filter.LabelSelector,
	}
	if filter.NodeName != "" {
		opts.FieldSelector = fields.OneTermEqualSelector("spec.nodeName", filter.NodeName).String()
	}

	podList, err := a.clientset.CoreV1().Pods(filter.Namespace).List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}

	pods := make([]domain.Pod, 0, len(podList.Items))

	for i := range podList.Items {
		// not every client honors field selectors
		if filter.NodeName != "" && podList.Items[i].Spec.NodeName != filter.NodeName {
			continue
		}

		pods = append(pods, toDomainPod(&podList.Items[i]))
	}

	return pods, nil
}

// PodMetrics returns the summed memory usage of the pod containers.
func (a *Adapter) PodMetrics(
	ctx context.Context,
	namespace,
	name string,
) (*domain.PodMetrics, error) {
	podMetrics, err := a.metricsClientset.MetricsV1beta1().PodMetricses(namespace).Get(
		ctx,
		name,
		metav1.GetOptions{},
	)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf("get pod metrics: %w", errPodNotFound)
		} else if apierrors.IsTooManyRequests(err) {
			return nil, fmt.Errorf("get pod metrics: %w", errTooManyRequests)
		}

		return nil, fmt.Errorf("get pod metrics: %w", err)
	}

	return toDomainPodMetrics(ctx, a.logger, podMetrics), nil
}

// DeletePod deletes a pod with a zero grace period.
func (a *Adapter) DeletePod(
	ctx context.Context,
	namespace,
	name string,
) error {
	gracePeriod := int64(0)

	err := a.clientset.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{
		GracePeriodSeconds: &gracePeriod,
	})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return fmt.Errorf("delete pod: %w", errPodNotFound)
		}

		return fmt.Errorf("delete pod: %w", err)
	}

	a.logger.InfoContext(ctx, "pod deleted", "pod", name, "namespace", namespace)

	return nil
}

// MovePodToNamespace recreates the pod in the target namespace and deletes the original.
// The copy keeps labels, annotations and spec, loses its node binding and
// projected service account token so it can be scheduled in the new namespace.
func (a *Adapter) MovePodToNamespace(
	ctx context.Context,
	namespace,
	name,
	targetNamespace string,
) error {
	pod, err := a.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return fmt.Errorf("get pod: %w", errPodNotFound)
		}

		return fmt.Errorf("get pod: %w", err)
	}

	err = a.ensureNamespace(ctx, targetNamespace)
	if err != nil {
		return err
	}

	_, err = a.clientset.CoreV1().Pods(targetNamespace).Create(ctx, quarantineCopy(pod, targetNamespace), metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("create pod in %s: %w", targetNamespace, err)
	}

	err = a.DeletePod(ctx, namespace, name)
	if err != nil {
		var target *PodNotFoundError
		if !errors.As(err, &target) {
			return err
		}
	}

	a.logger.InfoContext(ctx, "pod moved",
		"pod", name,
		"namespace", namespace,
		"targetNamespace", targetNamespace,
	)

	return nil
}

func (a *Adapter) ensureNamespace(ctx context.Context, name string) error {
	_, err := a.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err == nil {
		return nil
	}

	if !apierrors.IsNotFound(err) {
		return fmt.Errorf("get namespace %s: %w", name, err)
	}

	_, err = a.clientset.CoreV1().Namespaces().Create(ctx, &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("create namespace %s: %w", name, err)
	}

	return nil
}

func quarantineCopy(pod *corev1.Pod, targetNamespace string) *corev1.Pod {
	annotations := make(map[string]string, len(pod.Annotations)+1)
	for k, v := range pod.Annotations {
		annotations[k] = v
	}

	annotations[AnnotationQuarantinedFrom] = pod.Namespace

	spec := pod.Spec.DeepCopy()
	spec.NodeName = ""
	spec.ServiceAccountName = ""
	spec.DeprecatedServiceAccount = ""

	volumes := spec.Volumes[:0]

	for i := range spec.Volumes {
		if !strings.HasPrefix(spec.Volumes[i].Name, serviceAccountVolume) {
			volumes = append(volumes, spec.Volumes[i])
		}
	}

	spec.Volumes = volumes

	for i := range spec.Containers {
		spec.Containers[i].VolumeMounts = withoutTokenMounts(spec.Containers[i].VolumeMounts)
	}

	for i := range spec.InitContainers {
		spec.InitContainers[i].VolumeMounts = withoutTokenMounts(spec.InitContainers[i].VolumeMounts)
	}

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:        pod.Name,
			Namespace:   targetNamespace,
			Labels:      pod.Labels,
			Annotations: annotations,
		},
		Spec: *spec,
	}
}

func withoutTokenMounts(mounts []corev1.VolumeMount) []corev1.VolumeMount {
	out := mounts[:0]

	for i := range mounts {
		if !strings.HasPrefix(mounts[i].Name, serviceAccountVolume) {
			out = append(out, mounts[i])
		}
	}

	return out
}

// ListNodes returns every node in the cluster.
func (a *Adapter) ListNodes(ctx context.Context) ([]domain.Node, error) {
	nodeList, err := a.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	nodes := make([]domain.Node, 0, len(nodeList.Items))
	for i := range nodeList.Items {
		nodes = append(nodes, toDomainNode(&nodeList.Items[i]))
	}

	return nodes, nil
}

// CordonNode marks the node unschedulable.
func (a *Adapter) CordonNode(ctx context.Context, name string) error {
	return a.setUnschedulable(ctx, name, true)
}

// UncordonNode marks the node schedulable again.
func (a *Adapter) UncordonNode(ctx context.Context, name string) error {
	return a.setUnschedulable(ctx, name, false)
}

func (a *Adapter) setUnschedulable(ctx context.Context, name string, unschedulable bool) error {
	var marker any
	if unschedulable {
		marker = cordonedByValue
	}

	patch := map[string]any{
		"metadata": map[string]any{
			"annotations": map[string]any{AnnotationCordonedBy: marker},
		},
		"spec": map[string]any{
			"unschedulable": unschedulable,
		},
	}

	patchBytes, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal node patch: %w", err)
	}

	_, err = a.clientset.CoreV1().Nodes().Patch(
		ctx,
		name,
		types.MergePatchType,
		patchBytes,
		metav1.PatchOptions{},
	)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return fmt.Errorf("patch node %s: %w", name, errNodeNotFound)
		}

		return fmt.Errorf("patch node %s: %w", name, err)
	}

	a.logger.InfoContext(ctx, "node schedulability changed", "node", name, "unschedulable", unschedulable)

	return nil
}

// DrainNode cordons the node and evicts its pods through the eviction API.
// DaemonSet, mirror and finished pods are skipped. Eviction failures are
// collected and do not stop the drain.
func (a *Adapter) DrainNode(ctx context.Context, name string) (domain.DrainResult, error) {
	result := domain.DrainResult{
		NodeName: name,
		Evicted:  []string{},
		Skipped:  []string{},
		Failed:   []string{},
	}

	err := a.CordonNode(ctx, name)
	if err != nil {
		return result, err
	}

	podList, err := a.clientset.CoreV1().Pods("").List(ctx, metav1.ListOptions{
		FieldSelector: fields.OneTermEqualSelector("spec.nodeName", name).String(),
	})
	if err != nil {
		return result, fmt.Errorf("list pods on node %s: %w", name, err)
	}

	for i := range podList.Items {
		pod := &podList.Items[i]
		if pod.Spec.NodeName != name {
			continue
		}

		key := domain.PodKey{Namespace: pod.Namespace, Name: pod.Name}.String()

		if isDrainExempt(pod) || isTerminated(pod) {
			result.Skipped = append(result.Skipped, key)

			continue
		}

		err = a.evictPod(ctx, pod.Namespace, pod.Name)
		if err != nil {
			a.logger.WarnContext(ctx, "evict pod failed", "node", name, "pod", key, "reason", err)
			result.Failed = append(result.Failed, key)

			continue
		}

		result.Evicted = append(result.Evicted, key)
	}

	a.logger.InfoContext(ctx, "node drained",
		"node", name,
		"evicted", len(result.Evicted),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)

	return result, nil
}

func (a *Adapter) evictPod(
	ctx context.Context,
	namespace,
	name string,
) error {
	eviction := &policy.Eviction{
		TypeMeta: metav1.TypeMeta{
			APIVersion: evictionAPIVersion,
			Kind:       evictionKind,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
	}

	err := a.clientset.PolicyV1().Evictions(eviction.Namespace).Evict(ctx, eviction)
	if err != nil {
		switch {
		case apierrors.IsTooManyRequests(err):
			return fmt.Errorf("evict pod: %w", errTooManyRequests)
		case apierrors.IsNotFound(err):
			return fmt.Errorf("evict pod: %w", errPodNotFound)
		}

		return fmt.Errorf("evict pod: %w", err)
	}

	return nil
}
