// Package resolve assembles the base workload template from a validated
// deployment request and the ambient launcher configuration.
package resolve

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/jobmesh/jobctl/internal/request"
	"github.com/jobmesh/jobctl/internal/workload"
)

// AuxFilesKey carries an auxiliary-files reference into the system
// properties when the request names one.
const AuxFilesKey = "runner.aux.filesRef"

// Config is the ambient configuration the resolver folds into every
// template. It is populated from flags, environment and the optional
// config file by the CLI layer.
type Config struct {
	// Image is the runner container image.
	Image string `mapstructure:"image"`

	// ServiceAccount is the pod-level service account, distinct from the
	// in-runtime service identity property.
	ServiceAccount string `mapstructure:"serviceAccount"`

	// Labels are merged into the pod template labels.
	Labels map[string]string `mapstructure:"labels"`
}

// Resolver turns requests into resolved workload specs.
type Resolver struct {
	config Config
}

// New returns a Resolver over the given ambient configuration.
func New(config Config) *Resolver {
	return &Resolver{config: config}
}

// Resolve validates the request and renders the resolved spec the launcher
// consumes. The returned spec is independent of the request: later request
// mutations do not leak into it.
func (r *Resolver) Resolve(req *request.Request) (*workload.ResolvedSpec, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	labels := map[string]string{"app.kubernetes.io/managed-by": "jobctl"}
	for k, v := range r.config.Labels {
		labels[k] = v
	}

	props := make(map[string]string, len(req.Properties)+1)
	for k, v := range req.Properties {
		props[k] = v
	}
	if req.AuxFilesRef != "" {
		props[AuxFilesKey] = req.AuxFilesRef
	}

	container := &corev1.Container{
		Name:  "runner",
		Image: r.config.Image,
		Args:  runnerArgs(req),
	}
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Labels: labels},
		Spec: corev1.PodSpec{
			RestartPolicy:      corev1.RestartPolicyNever,
			ServiceAccountName: r.config.ServiceAccount,
		},
	}

	return &workload.ResolvedSpec{
		Name:             req.Name,
		Template:         workload.Template{Pod: pod, Container: container},
		SystemProperties: props,
	}, nil
}

// runnerArgs renders the runner invocation for the request's main resource
// variant. The switch is exhaustive over the closed kind set; Validate has
// already rejected anything else.
func runnerArgs(req *request.Request) []string {
	args := []string{"run"}
	if req.Main != nil {
		switch req.Main.Kind {
		case request.MainResourceArchive:
			args = append(args, "--archive", req.Main.Path)
		case request.MainResourceScript:
			args = append(args, "--script", req.Main.Path)
		}
	}
	args = append(args, req.EntryPoint)
	return append(args, req.Args...)
}
