package completion

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
)

func podInPhase(phase corev1.PodPhase) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "my-app-123-runner"},
		Status:     corev1.PodStatus{Phase: phase},
	}
}

var _ = Describe("Gate", func() {
	var (
		fw   *watch.FakeWatcher
		gate *Gate
	)

	BeforeEach(func() {
		fw = watch.NewFake()
		gate = NewGate(fw)
	})

	AfterEach(func() {
		fw.Stop()
	})

	Context("state transitions", func() {
		It("starts pending", func() {
			Expect(gate.State()).To(Equal(StatePending))
		})

		It("follows the pod phase through to success", func() {
			fw.Add(podInPhase(corev1.PodPending))
			Eventually(gate.State).Should(Equal(StatePending))

			fw.Modify(podInPhase(corev1.PodRunning))
			Eventually(gate.State).Should(Equal(StateRunning))

			fw.Modify(podInPhase(corev1.PodSucceeded))
			Eventually(gate.State).Should(Equal(StateSucceeded))
		})

		It("commits failure as terminal", func() {
			fw.Modify(podInPhase(corev1.PodFailed))
			Eventually(gate.State).Should(Equal(StateFailed))
			Expect(gate.State().Terminal()).To(BeTrue())
		})

		It("absorbs unrecognized phases without changing the committed state", func() {
			fw.Modify(podInPhase(corev1.PodRunning))
			Eventually(gate.State).Should(Equal(StateRunning))

			fw.Modify(podInPhase(corev1.PodUnknown))
			Consistently(gate.State).Should(Equal(StateRunning))
		})

		It("keeps a terminal state once committed", func() {
			fw.Modify(podInPhase(corev1.PodSucceeded))
			Eventually(gate.State).Should(Equal(StateSucceeded))

			fw.Modify(podInPhase(corev1.PodRunning))
			Consistently(gate.State).Should(Equal(StateSucceeded))
		})

		It("treats pod deletion as terminal-unknown", func() {
			fw.Delete(podInPhase(corev1.PodRunning))
			Eventually(gate.State).Should(Equal(StateUnknownTerminal))
		})
	})

	Context("AwaitTerminal", func() {
		It("returns immediately without a progress interval", func() {
			Expect(gate.AwaitTerminal(context.Background(), 0)).To(Equal(StatePending))
		})

		It("blocks until a terminal state is observed", func() {
			done := make(chan State, 1)
			go func() {
				done <- gate.AwaitTerminal(context.Background(), 5*time.Millisecond)
			}()

			fw.Modify(podInPhase(corev1.PodRunning))
			Consistently(done).ShouldNot(Receive())

			fw.Modify(podInPhase(corev1.PodSucceeded))
			Eventually(done).Should(Receive(Equal(StateSucceeded)))
		})

		It("releases the waiter with UnknownTerminal when the subscription closes before any event", func() {
			done := make(chan State, 1)
			go func() {
				done <- gate.AwaitTerminal(context.Background(), 5*time.Millisecond)
			}()

			fw.Stop()
			Eventually(done).Should(Receive(Equal(StateUnknownTerminal)))
		})

		It("releases the waiter when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan State, 1)
			go func() {
				done <- gate.AwaitTerminal(ctx, time.Minute)
			}()

			fw.Modify(podInPhase(corev1.PodRunning))
			Eventually(gate.State).Should(Equal(StateRunning))

			cancel()
			Eventually(done).Should(Receive(Equal(StateRunning)))
		})
	})
})
