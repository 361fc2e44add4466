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

// Package launcher exposes the deployment operation: materialize a resolved
// workload spec on the cluster and optionally wait for it to finish.
package launcher

import (
	"context"
	"time"

	"k8s.io/client-go/kubernetes"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/jobmesh/jobctl/internal/completion"
	"github.com/jobmesh/jobctl/internal/metrics"
	"github.com/jobmesh/jobctl/internal/naming"
	"github.com/jobmesh/jobctl/internal/properties"
	"github.com/jobmesh/jobctl/internal/submit"
	"github.com/jobmesh/jobctl/internal/workload"
)

// DefaultProgressInterval is used when the caller waits for completion
// without choosing a progress cadence.
const DefaultProgressInterval = 10 * time.Second

// Options controls the blocking behavior of one deployment.
type Options struct {
	// WaitForCompletion blocks Deploy until the workload reaches a
	// terminal state. There is no timeout: a workload that never
	// terminates blocks until the context is cancelled.
	WaitForCompletion bool

	// ProgressInterval is the cadence of progress log lines while
	// waiting. Non-positive values fall back to DefaultProgressInterval.
	ProgressInterval time.Duration
}

// Launcher deploys resolved workload specs into one namespace.
type Launcher struct {
	namespace string
	namer     *naming.Namer
	submitter *submit.Submitter
}

// New returns a Launcher for the given cluster client and namespace.
func New(client kubernetes.Interface, namespace string, namer *naming.Namer) *Launcher {
	return &Launcher{
		namespace: namespace,
		namer:     namer,
		submitter: submit.New(client, namespace),
	}
}

// Deploy materializes spec as a runner pod plus its dependents and returns
// the generated application id: immediately after submission when not
// waiting, or once the workload reaches a terminal state when waiting.
// Assembly errors surface before any cluster mutation. Cancelling the
// context while waiting returns the id together with the context's error.
func (l *Launcher) Deploy(ctx context.Context, spec *workload.ResolvedSpec, opts Options) (string, error) {
	logger := ctrl.LoggerFrom(ctx)

	appID := l.namer.ApplicationID()
	prefix := l.namer.ResourcePrefix(spec.Name)
	configMapName := prefix + "-conf"

	assembled, err := workload.Assemble(spec.Template, spec.SystemProperties, configMapName)
	if err != nil {
		metrics.DeploymentsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return "", err
	}

	artifact := properties.BuildArtifact(prefix, spec.SystemProperties)
	pod := assembled.RunnerPod(prefix+"-runner", l.namespace, appID)

	dependents := make([]workload.Dependent, 0, len(spec.Dependents)+1)
	dependents = append(dependents, artifact.ConfigMap(configMapName, l.namespace))
	dependents = append(dependents, spec.Dependents...)
	workload.StampApplicationID(appID, dependents)

	result, err := l.submitter.Submit(ctx, pod, dependents)
	if err != nil {
		metrics.DeploymentsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return "", err
	}
	logger.Info("Submitted workload",
		"application", appID,
		"pod", result.Pod.Name,
		"namespace", l.namespace,
		"dependents", len(result.Dependents))

	if !opts.WaitForCompletion {
		result.Watch.Stop()
		metrics.DeploymentsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
		return appID, nil
	}

	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	gate := completion.NewGate(result.Watch)
	state := gate.AwaitTerminal(ctx, interval)
	result.Watch.Stop()

	if !state.Terminal() {
		logger.Info("Stopped waiting before the workload terminated",
			"application", appID,
			"state", state)
		metrics.DeploymentsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return appID, ctx.Err()
	}

	logger.Info("Workload reached terminal state",
		"application", appID,
		"state", state)
	metrics.DeploymentsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return appID, nil
}
