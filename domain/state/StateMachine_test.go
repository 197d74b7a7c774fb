package state_test

import (
	"staffing/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
	)

	BeforeEach(func() {
		//         PENDING      DOING         DONE
		// PENDING   -            V (begin)   V (close)
		// DOING     V (cancel)   -           V (finish)
		// DONE      X            X           -
		stateMachine = state.NewStateMachine(
			[]state.State{{Name: "PENDING", Editable: true}, {Name: "DOING"}, {Name: "DONE"}},
			[]state.Transition{
				{Name: "begin", From: state.State{Name: "PENDING"}, To: state.State{Name: "DOING"}},
				{Name: "close", From: state.State{Name: "PENDING"}, To: state.State{Name: "DONE"}},
				{Name: "cancel", From: state.State{Name: "DOING"}, To: state.State{Name: "PENDING"}},
				{Name: "finish", From: state.State{Name: "DOING"}, To: state.State{Name: "DONE"}},
			})
	})

	Describe("AvailableTransitions", func() {
		It("should return availableTransitions as expected", func() {
			Ω(stateMachine.AvailableTransitions("PENDING", "")).Should(Equal([]state.Transition{
				{Name: "begin", From: state.State{Name: "PENDING"}, To: state.State{Name: "DOING"}},
				{Name: "close", From: state.State{Name: "PENDING"}, To: state.State{Name: "DONE"}},
			}))
			Ω(stateMachine.AvailableTransitions("", "DONE")).Should(Equal([]state.Transition{
				{Name: "close", From: state.State{Name: "PENDING"}, To: state.State{Name: "DONE"}},
				{Name: "finish", From: state.State{Name: "DOING"}, To: state.State{Name: "DONE"}},
			}))
			Ω(stateMachine.AvailableTransitions("DOING", "PENDING")).Should(Equal([]state.Transition{
				{Name: "cancel", From: state.State{Name: "DOING"}, To: state.State{Name: "PENDING"}},
			}))
			Ω(len(stateMachine.AvailableTransitions("UNKNOWN", ""))).Should(Equal(0))
		})
	})

	Describe("Transit", func() {
		It("should find named transitions leaving a state", func() {
			t, ok := stateMachine.Transit("DOING", "finish")
			Expect(ok).To(BeTrue())
			Expect(t.To.Name).To(Equal("DONE"))

			_, ok = stateMachine.Transit("PENDING", "finish")
			Expect(ok).To(BeFalse())
			_, ok = stateMachine.Transit("DONE", "begin")
			Expect(ok).To(BeFalse())
		})

		It("should report editable states", func() {
			Expect(stateMachine.Editable("PENDING")).To(BeTrue())
			Expect(stateMachine.Editable("DOING")).To(BeFalse())
			Expect(stateMachine.Editable("UNKNOWN")).To(BeFalse())
		})

		It("should report terminal states", func() {
			Expect(stateMachine.IsTerminal("DONE")).To(BeTrue())
			Expect(stateMachine.IsTerminal("DOING")).To(BeFalse())
		})
	})
})
