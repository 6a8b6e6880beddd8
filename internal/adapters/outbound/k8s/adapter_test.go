package k8s_test

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	policy "k8s.io/api/policy/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	fakek8s "k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	fakemetrics "k8s.io/metrics/pkg/client/clientset/versioned/fake"

	"github.com/skillcoder/nodechaos-controller/internal/adapters/outbound/k8s"
	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

type notFound interface {
	IsNotFound()
}

func newPod(namespace, name, node string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:              name,
			Namespace:         namespace,
			Labels:            map[string]string{"app": name},
			CreationTimestamp: metav1.NewTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)),
		},
		Spec: corev1.PodSpec{
			NodeName:           node,
			ServiceAccountName: "builder",
			Containers: []corev1.Container{
				{
					Name: "main",
					Resources: corev1.ResourceRequirements{
						Limits: corev1.ResourceList{corev1.ResourceMemory: resource.MustParse("256Mi")},
					},
					VolumeMounts: []corev1.VolumeMount{
						{Name: "kube-api-access-abcde", MountPath: "/var/run/secrets"},
						{Name: "data", MountPath: "/data"},
					},
				},
				{
					Name: "sidecar",
					Resources: corev1.ResourceRequirements{
						Limits: corev1.ResourceList{corev1.ResourceMemory: resource.MustParse("256Mi")},
					},
				},
			},
			Volumes: []corev1.Volume{
				{Name: "kube-api-access-abcde"},
				{Name: "data"},
			},
		},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			Conditions: []corev1.PodCondition{
				{Type: corev1.PodReady, Status: corev1.ConditionTrue},
			},
			ContainerStatuses: []corev1.ContainerStatus{
				{Name: "main", RestartCount: 2},
				{Name: "sidecar", RestartCount: 1},
			},
		},
	}
}

func newNode(name string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
			Labels: map[string]string{
				"node-role.kubernetes.io/worker": "",
			},
		},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
			},
			Addresses: []corev1.NodeAddress{
				{Type: corev1.NodeHostName, Address: name},
				{Type: corev1.NodeInternalIP, Address: "10.0.0.11"},
			},
			NodeInfo: corev1.NodeSystemInfo{KubeletVersion: "v1.33.1"},
		},
	}
}

func newAdapter(objects ...runtime.Object) (*k8s.Adapter, *fakek8s.Clientset, *fakemetrics.Clientset) {
	cs := fakek8s.NewSimpleClientset(objects...)
	ms := fakemetrics.NewSimpleClientset()

	return k8s.New(slog.Default(), cs, ms), cs, ms
}

func TestAdapter_ListPods(t *testing.T) {
	t.Parallel()

	adapter, _, _ := newAdapter(
		newPod("default", "web-1", "worker-1"),
		newPod("default", "web-2", "worker-2"),
		newPod("apps", "api-1", "worker-1"),
	)

	t.Run("all namespaces", func(t *testing.T) {
		t.Parallel()

		pods, err := adapter.ListPods(t.Context(), domain.PodFilter{})
		require.NoError(t, err)
		require.Len(t, pods, 3)
	})

	t.Run("converts pod fields", func(t *testing.T) {
		t.Parallel()

		pods, err := adapter.ListPods(t.Context(), domain.PodFilter{Namespace: "apps"})
		require.NoError(t, err)
		require.Len(t, pods, 1)

		pod := pods[0]
		require.Equal(t, "api-1", pod.Name)
		require.Equal(t, "worker-1", pod.NodeName)
		require.Equal(t, domain.PodPhaseRunning, pod.Phase)
		require.True(t, pod.Ready)
		require.Equal(t, int32(3), pod.RestartCount)
		require.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), pod.CreatedAt.UTC())
		require.NotNil(t, pod.MemoryLimit)
		require.True(t, pod.MemoryLimit.Equal(resource.MustParse("512Mi")))
	})

	t.Run("node filter", func(t *testing.T) {
		t.Parallel()

		pods, err := adapter.ListPods(t.Context(), domain.PodFilter{NodeName: "worker-1"})
		require.NoError(t, err)
		require.Len(t, pods, 2)

		for _, pod := range pods {
			require.Equal(t, "worker-1", pod.NodeName)
		}
	})

	t.Run("label selector", func(t *testing.T) {
		t.Parallel()

		pods, err := adapter.ListPods(t.Context(), domain.PodFilter{LabelSelector: "app=web-2"})
		require.NoError(t, err)
		require.Len(t, pods, 1)
		require.Equal(t, "web-2", pods[0].Name)
	})
}

func TestAdapter_DeletePod(t *testing.T) {
	t.Parallel()

	adapter, cs, _ := newAdapter(newPod("default", "web-1", "worker-1"))

	require.NoError(t, adapter.DeletePod(t.Context(), "default", "web-1"))

	list, err := cs.CoreV1().Pods("default").List(t.Context(), metav1.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, list.Items)

	err = adapter.DeletePod(t.Context(), "default", "web-1")
	require.Error(t, err)

	var target notFound
	require.ErrorAs(t, err, &target)
}

func TestAdapter_MovePodToNamespace(t *testing.T) {
	t.Parallel()

	t.Run("moves pod and creates namespace", func(t *testing.T) {
		t.Parallel()

		adapter, cs, _ := newAdapter(newPod("default", "web-1", "worker-1"))

		require.NoError(t, adapter.MovePodToNamespace(t.Context(), "default", "web-1", "quarantine"))

		_, err := cs.CoreV1().Namespaces().Get(t.Context(), "quarantine", metav1.GetOptions{})
		require.NoError(t, err)

		moved, err := cs.CoreV1().Pods("quarantine").Get(t.Context(), "web-1", metav1.GetOptions{})
		require.NoError(t, err)
		require.Empty(t, moved.Spec.NodeName)
		require.Empty(t, moved.Spec.ServiceAccountName)
		require.Equal(t, "default", moved.Annotations[k8s.AnnotationQuarantinedFrom])
		require.Equal(t, map[string]string{"app": "web-1"}, moved.Labels)
		require.Len(t, moved.Spec.Volumes, 1)
		require.Equal(t, "data", moved.Spec.Volumes[0].Name)
		require.Len(t, moved.Spec.Containers[0].VolumeMounts, 1)

		_, err = cs.CoreV1().Pods("default").Get(t.Context(), "web-1", metav1.GetOptions{})
		require.Error(t, err)
	})

	t.Run("existing namespace is reused", func(t *testing.T) {
		t.Parallel()

		adapter, cs, _ := newAdapter(
			newPod("default", "web-1", "worker-1"),
			&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "quarantine"}},
		)

		require.NoError(t, adapter.MovePodToNamespace(t.Context(), "default", "web-1", "quarantine"))

		list, err := cs.CoreV1().Pods("quarantine").List(t.Context(), metav1.ListOptions{})
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
	})

	t.Run("missing pod", func(t *testing.T) {
		t.Parallel()

		adapter, _, _ := newAdapter()

		err := adapter.MovePodToNamespace(t.Context(), "default", "ghost", "quarantine")
		require.Error(t, err)

		var target notFound
		require.ErrorAs(t, err, &target)
	})
}

func TestAdapter_CordonUncordon(t *testing.T) {
	t.Parallel()

	adapter, cs, _ := newAdapter(newNode("worker-1"))

	require.NoError(t, adapter.CordonNode(t.Context(), "worker-1"))

	node, err := cs.CoreV1().Nodes().Get(t.Context(), "worker-1", metav1.GetOptions{})
	require.NoError(t, err)
	require.True(t, node.Spec.Unschedulable)
	require.Equal(t, "nodechaos-controller", node.Annotations[k8s.AnnotationCordonedBy])

	require.NoError(t, adapter.UncordonNode(t.Context(), "worker-1"))

	node, err = cs.CoreV1().Nodes().Get(t.Context(), "worker-1", metav1.GetOptions{})
	require.NoError(t, err)
	require.False(t, node.Spec.Unschedulable)
	require.NotContains(t, node.Annotations, k8s.AnnotationCordonedBy)

	err = adapter.CordonNode(t.Context(), "ghost")
	require.Error(t, err)

	var target notFound
	require.ErrorAs(t, err, &target)
}

func TestAdapter_ListNodes(t *testing.T) {
	t.Parallel()

	adapter, _, _ := newAdapter(newNode("worker-1"))

	nodes, err := adapter.ListNodes(t.Context())
	require.NoError(t, err)
	require.Equal(t, []domain.Node{
		{
			Name:           "worker-1",
			Ready:          true,
			InternalIP:     "10.0.0.11",
			KubeletVersion: "v1.33.1",
			Roles:          []string{"worker"},
		},
	}, nodes)
}

func TestAdapter_DrainNode(t *testing.T) {
	t.Parallel()

	daemon := newPod("kube-system", "proxy-1", "worker-1")
	daemon.OwnerReferences = []metav1.OwnerReference{{Kind: "DaemonSet", Name: "proxy"}}

	done := newPod("default", "job-1", "worker-1")
	done.Status.Phase = corev1.PodSucceeded

	adapter, cs, _ := newAdapter(
		newNode("worker-1"),
		newPod("default", "web-1", "worker-1"),
		newPod("default", "web-2", "worker-1"),
		newPod("default", "web-3", "worker-2"),
		daemon,
		done,
	)

	var (
		mu      sync.Mutex
		evicted []string
	)

	cs.PrependReactor("*", "pods", func(action k8stesting.Action) (bool, runtime.Object, error) {
		if action.GetSubresource() != "eviction" {
			return false, nil, nil
		}

		create, ok := action.(k8stesting.CreateAction)
		if !ok {
			return false, nil, nil
		}

		eviction, ok := create.GetObject().(*policy.Eviction)
		if !ok {
			return false, nil, nil
		}

		mu.Lock()
		defer mu.Unlock()

		evicted = append(evicted, eviction.Name)

		if eviction.Name == "web-2" {
			return true, nil, apierrors.NewTooManyRequests("disruption budget", 1)
		}

		return true, nil, nil
	})

	result, err := adapter.DrainNode(t.Context(), "worker-1")
	require.NoError(t, err)
	require.Equal(t, "worker-1", result.NodeName)
	require.Equal(t, []string{"default:web-1"}, result.Evicted)
	require.Equal(t, []string{"default:web-2"}, result.Failed)
	require.ElementsMatch(t, []string{"kube-system:proxy-1", "default:job-1"}, result.Skipped)

	mu.Lock()
	require.ElementsMatch(t, []string{"web-1", "web-2"}, evicted)
	mu.Unlock()

	node, err := cs.CoreV1().Nodes().Get(t.Context(), "worker-1", metav1.GetOptions{})
	require.NoError(t, err)
	require.True(t, node.Spec.Unschedulable)
}

func TestAdapter_PodMetrics(t *testing.T) {
	t.Parallel()

	adapter, _, ms := newAdapter()

	ms.PrependReactor("get", "pods", func(action k8stesting.Action) (bool, runtime.Object, error) {
		get, ok := action.(k8stesting.GetAction)
		if !ok || get.GetName() != "web-1" {
			return true, nil, apierrors.NewNotFound(podsResource, "ghost")
		}

		return true, &metricsv1beta1.PodMetrics{
			ObjectMeta: metav1.ObjectMeta{Name: "web-1", Namespace: "default"},
			Containers: []metricsv1beta1.ContainerMetrics{
				{Name: "main", Usage: corev1.ResourceList{corev1.ResourceMemory: resource.MustParse("100Mi")}},
				{Name: "sidecar", Usage: corev1.ResourceList{corev1.ResourceMemory: resource.MustParse("28Mi")}},
			},
		}, nil
	})

	got, err := adapter.PodMetrics(t.Context(), "default", "web-1")
	require.NoError(t, err)
	require.True(t, got.MemoryUsage.Equal(resource.MustParse("128Mi")))

	_, err = adapter.PodMetrics(t.Context(), "default", "ghost")
	require.Error(t, err)

	var target notFound
	require.ErrorAs(t, err, &target)
}

var podsResource = schema.GroupResource{Resource: "pods"}

func TestAdapter_Ping(t *testing.T) {
	t.Parallel()

	t.Run("api answers", func(t *testing.T) {
		t.Parallel()

		adapter := k8s.New(slog.Default(), fakek8s.NewSimpleClientset(), fakemetrics.NewSimpleClientset())
		require.Equal(t, "kubernetes-api", adapter.Name())
		require.NoError(t, adapter.Ping(t.Context()))
	})

	t.Run("api error", func(t *testing.T) {
		t.Parallel()

		clientset := fakek8s.NewSimpleClientset()
		clientset.PrependReactor("list", "namespaces", func(k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, apierrors.NewServiceUnavailable("etcd down")
		})

		adapter := k8s.New(slog.Default(), clientset, fakemetrics.NewSimpleClientset())
		require.Error(t, adapter.Ping(t.Context()))
	})
}
