/*
Copyright 2025 The jobctl Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package workload defines the resolved workload model and the
// transformations that turn a template into the runner pod and its
// dependent objects.
package workload

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// ApplicationIDLabel is stamped on every object created for a submission.
const ApplicationIDLabel = "jobctl.jobmesh.io/app-id"

// Template pairs a pod template with the runner container it will execute.
// The container is kept separate until the final render so transformations
// can target it without searching the pod spec.
type Template struct {
	Pod       *corev1.Pod
	Container *corev1.Container
}

// DeepCopy returns a structurally independent copy of the template.
func (t Template) DeepCopy() Template {
	return Template{
		Pod:       t.Pod.DeepCopy(),
		Container: t.Container.DeepCopy(),
	}
}

// RunnerPod renders the final pod for a submission: the runner container is
// placed first in the pod spec, ahead of any sidecars the template carries,
// and the application id label is merged into the template labels.
func (t Template) RunnerPod(name, namespace, appID string) *corev1.Pod {
	pod := t.Pod.DeepCopy()
	pod.Name = name
	pod.Namespace = namespace
	if pod.Labels == nil {
		pod.Labels = map[string]string{}
	}
	pod.Labels[ApplicationIDLabel] = appID
	pod.Spec.Containers = append([]corev1.Container{*t.Container.DeepCopy()}, pod.Spec.Containers...)
	return pod
}

// ResolvedSpec is the fully-resolved workload specification consumed by the
// launcher. It is produced by the resolver and never mutated afterwards.
type ResolvedSpec struct {
	// Name is the human-facing display name, normalized by the naming
	// collaborator into the resource-name prefix.
	Name string

	// Template is the workload template the assembler operates on.
	Template Template

	// SystemProperties is the flat property map partitioned into the
	// config artifact and injected into the runner environment.
	SystemProperties map[string]string

	// Dependents are extra cluster objects created alongside the runner
	// pod, in addition to the config artifact.
	Dependents []Dependent
}

// Dependent is a secondary cluster object created alongside the runner pod
// and garbage-collected with it through its controller owner reference.
// The submitter supports the closed set of ConfigMap, Secret and Service.
type Dependent interface {
	metav1.Object
	runtime.Object
}

// StampApplicationID merges the application id label into each dependent's
// labels, so every object of a submission is selectable by id.
func StampApplicationID(appID string, dependents []Dependent) {
	for _, dep := range dependents {
		labels := dep.GetLabels()
		if labels == nil {
			labels = map[string]string{}
		}
		labels[ApplicationIDLabel] = appID
		dep.SetLabels(labels)
	}
}
