// Package submit sequences the control-plane calls for one deployment:
// watch subscription, runner pod creation, dependent creation and the
// compensating pod deletion when dependent creation fails.
package submit

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/jobmesh/jobctl/internal/logging"
	"github.com/jobmesh/jobctl/internal/metrics"
	"github.com/jobmesh/jobctl/internal/workload"
)

// SubmissionError reports a failed control-plane create call. Op names the
// call that failed; Err is the transport-level cause. There is no retry:
// every submission error is fatal to the deployment.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// WatchError reports that the status watch could not be opened. It is
// raised before anything is created, so no compensation is needed.
type WatchError struct {
	Err error
}

func (e *WatchError) Error() string {
	return fmt.Sprintf("opening status watch: %v", e.Err)
}

func (e *WatchError) Unwrap() error { return e.Err }

// CompensationError reports that the compensating runner pod deletion
// itself failed. Both the original submission failure and the deletion
// failure are surfaced; the original cause is never swallowed.
type CompensationError struct {
	Cause           error
	CompensationErr error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%v (additionally, compensating pod deletion failed: %v)",
		e.Cause, e.CompensationErr)
}

func (e *CompensationError) Unwrap() error { return e.Cause }

// Result is the outcome of a successful submission. The watch subscription
// is left open so the completion gate can consume the pod's status events;
// the caller owns stopping it.
type Result struct {
	Pod        *corev1.Pod
	Dependents []workload.Dependent
	Watch      watch.Interface
}

// Submitter creates the runner pod and its dependents in one namespace.
type Submitter struct {
	client    kubernetes.Interface
	namespace string
}

// New returns a Submitter bound to a namespace.
func New(client kubernetes.Interface, namespace string) *Submitter {
	return &Submitter{client: client, namespace: namespace}
}

// Submit materializes the deployment on the control plane. The call order
// is load-bearing:
//
//  1. The watch is opened on the pod name before the pod exists. The
//     control plane may emit the earliest lifecycle events immediately on
//     creation; subscribing afterwards can lose them.
//  2. The pod is created and its server-assigned identity captured.
//  3. Dependents are linked to the created pod and created one by one.
//  4. If a dependent creation fails, the pod is deleted as compensation and
//     the original failure re-raised. Dependents created before the failure
//     are NOT individually rolled back: their owner references make the
//     control plane collect them once the pod deletion is honored, though
//     they may transiently exist unowned.
func (s *Submitter) Submit(ctx context.Context, pod *corev1.Pod, dependents []workload.Dependent) (*Result, error) {
	logger := ctrl.LoggerFrom(ctx)

	// Reject unsupported dependent kinds up front so a programming error
	// cannot surface halfway through creation.
	for _, dep := range dependents {
		if !supportedDependent(dep) {
			return nil, &SubmissionError{
				Op:  "validating dependents",
				Err: fmt.Errorf("unsupported dependent kind %T", dep),
			}
		}
	}

	w, err := s.client.CoreV1().Pods(s.namespace).Watch(ctx, metav1.ListOptions{
		FieldSelector: fields.OneTermEqualSelector("metadata.name", pod.Name).String(),
	})
	if err != nil {
		return nil, &WatchError{Err: fmt.Errorf("pod %s/%s: %w", s.namespace, pod.Name, err)}
	}

	created, err := s.client.CoreV1().Pods(s.namespace).Create(ctx, pod, metav1.CreateOptions{})
	if err != nil {
		w.Stop()
		return nil, &SubmissionError{
			Op:  fmt.Sprintf("creating runner pod %s/%s", s.namespace, pod.Name),
			Err: err,
		}
	}
	logger.V(logging.DEBUG).Info("Created runner pod",
		"pod", created.Name,
		"namespace", created.Namespace,
		"uid", created.UID)

	workload.LinkDependents(workload.OwnerLinkFor(created), dependents)

	for _, dep := range dependents {
		if err := s.createDependent(ctx, dep); err != nil {
			w.Stop()
			cause := &SubmissionError{
				Op:  fmt.Sprintf("creating dependent %s/%s", s.namespace, dep.GetName()),
				Err: err,
			}
			return nil, s.compensate(ctx, created, cause)
		}
		logger.V(logging.DEBUG).Info("Created dependent resource",
			"name", dep.GetName(),
			"namespace", s.namespace)
	}

	return &Result{Pod: created, Dependents: dependents, Watch: w}, nil
}

// createDependent dispatches over the closed set of supported dependent
// kinds. supportedDependent must be kept in sync with the cases here.
func (s *Submitter) createDependent(ctx context.Context, dep workload.Dependent) error {
	switch d := dep.(type) {
	case *corev1.ConfigMap:
		_, err := s.client.CoreV1().ConfigMaps(s.namespace).Create(ctx, d, metav1.CreateOptions{})
		return err
	case *corev1.Secret:
		_, err := s.client.CoreV1().Secrets(s.namespace).Create(ctx, d, metav1.CreateOptions{})
		return err
	case *corev1.Service:
		_, err := s.client.CoreV1().Services(s.namespace).Create(ctx, d, metav1.CreateOptions{})
		return err
	default:
		return fmt.Errorf("unsupported dependent kind %T", dep)
	}
}

func supportedDependent(dep workload.Dependent) bool {
	switch dep.(type) {
	case *corev1.ConfigMap, *corev1.Secret, *corev1.Service:
		return true
	default:
		return false
	}
}

// compensate deletes the runner pod after a dependent creation failure and
// returns the error to surface to the caller. If the deletion itself fails
// both errors are reported together.
func (s *Submitter) compensate(ctx context.Context, pod *corev1.Pod, cause error) error {
	logger := ctrl.LoggerFrom(ctx)
	logger.Info("Rolling back runner pod after dependent creation failure",
		"pod", pod.Name,
		"namespace", pod.Namespace,
		"cause", cause.Error())
	metrics.CompensationsTotal.Inc()

	if err := s.client.CoreV1().Pods(s.namespace).Delete(ctx, pod.Name, metav1.DeleteOptions{}); err != nil {
		return &CompensationError{
			Cause:           cause,
			CompensationErr: fmt.Errorf("deleting runner pod %s/%s: %w", s.namespace, pod.Name, err),
		}
	}
	return cause
}
