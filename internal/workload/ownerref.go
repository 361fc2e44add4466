package workload

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
)

// OwnerLinkFor derives the controller owner reference for the created
// runner pod. It must be called with the server-returned object so the
// reference carries the server-assigned UID; a reference built from the
// submitted pod would be dangling.
func OwnerLinkFor(pod *corev1.Pod) metav1.OwnerReference {
	apiVersion := pod.APIVersion
	if apiVersion == "" {
		apiVersion = "v1"
	}
	kind := pod.Kind
	if kind == "" {
		kind = "Pod"
	}
	return metav1.OwnerReference{
		APIVersion: apiVersion,
		Kind:       kind,
		Name:       pod.Name,
		UID:        pod.UID,
		Controller: ptr.To(true),
	}
}

// LinkDependents stamps each dependent with exactly the given owner
// reference, overwriting any references it already carries. The control
// plane uses the reference to cascade-delete dependents when the runner
// pod is removed.
func LinkDependents(ref metav1.OwnerReference, dependents []Dependent) {
	for _, dep := range dependents {
		dep.SetOwnerReferences([]metav1.OwnerReference{ref})
	}
}
