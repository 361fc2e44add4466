// Package completion turns the asynchronous pod status event stream into a
// synchronous await-terminal-state contract.
package completion

import (
	"context"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/watch"
	ctrl "sigs.k8s.io/controller-runtime"
)

// State is the committed completion state of a workload.
type State string

const (
	// StatePending means the runner pod has not started executing.
	StatePending State = "Pending"
	// StateRunning means the runner pod is executing.
	StateRunning State = "Running"
	// StateSucceeded is terminal: the workload completed successfully.
	StateSucceeded State = "Succeeded"
	// StateFailed is terminal: the workload completed unsuccessfully.
	StateFailed State = "Failed"
	// StateUnknownTerminal is terminal: no further status can be observed,
	// typically because the subscription closed or the pod was deleted.
	StateUnknownTerminal State = "UnknownTerminal"
	// StateUnknown absorbs unrecognized non-terminal signals. It is never
	// committed; the previously committed state stands.
	StateUnknown State = "Unknown"
)

// Terminal reports whether the workload will not transition further.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateUnknownTerminal:
		return true
	default:
		return false
	}
}

// stateFromPhase maps a pod phase onto a gate state. Phases the gate does
// not recognize map to the non-committing StateUnknown.
func stateFromPhase(phase corev1.PodPhase) State {
	switch phase {
	case corev1.PodPending:
		return StatePending
	case corev1.PodRunning:
		return StateRunning
	case corev1.PodSucceeded:
		return StateSucceeded
	case corev1.PodFailed:
		return StateFailed
	default:
		return StateUnknown
	}
}

// Gate consumes a watch subscription on the runner pod and exposes a
// blocking await on its terminal state. The committed state is mutated
// exclusively by the delivery goroutine; callers only read it.
type Gate struct {
	watch watch.Interface

	mu    sync.Mutex
	state State
	done  chan struct{}
}

// NewGate starts consuming the subscription. The gate does not own the
// subscription's lifetime: stopping it externally releases any waiter with
// StateUnknownTerminal.
func NewGate(w watch.Interface) *Gate {
	g := &Gate{
		watch: w,
		state: StatePending,
		done:  make(chan struct{}),
	}
	go g.deliver()
	return g
}

func (g *Gate) deliver() {
	for event := range g.watch.ResultChan() {
		if event.Type == watch.Deleted {
			// A deleted pod emits no further status.
			g.commit(StateUnknownTerminal)
			continue
		}
		pod, ok := event.Object.(*corev1.Pod)
		if !ok {
			continue
		}
		g.commit(stateFromPhase(pod.Status.Phase))
	}
	// A closed subscription can never report a terminal phase.
	g.commit(StateUnknownTerminal)
}

// commit applies a state transition. Unknown signals and anything after a
// terminal state are absorbed without effect.
func (g *Gate) commit(next State) {
	if next == StateUnknown {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Terminal() {
		return
	}
	g.state = next
	if next.Terminal() {
		close(g.done)
	}
}

// State returns the committed completion state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// AwaitTerminal blocks until a terminal state is committed, logging a
// progress line once per progressInterval while waiting (never before the
// first interval elapses). A non-positive interval returns the current
// state immediately without blocking.
//
// The gate enforces no timeout of its own: a workload that never terminates
// blocks the caller until the subscription is stopped, which releases the
// wait with StateUnknownTerminal. Cancelling ctx also releases the wait,
// returning whatever state is committed at that point.
func (g *Gate) AwaitTerminal(ctx context.Context, progressInterval time.Duration) State {
	if progressInterval <= 0 {
		return g.State()
	}

	logger := ctrl.LoggerFrom(ctx)
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.done:
			return g.State()
		case <-ctx.Done():
			return g.State()
		case <-ticker.C:
			logger.Info("Workload has not completed yet", "state", g.State())
		}
	}
}
