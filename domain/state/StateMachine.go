package state

type StateMachineTraits interface {
	AvailableTransitions(fromState string, toState string) []Transition
	Transit(fromState string, transitionName string) (*Transition, bool)
	Editable(stateName string) bool
}

// stateless object, just used for state computing
type StateMachine struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

// State is editable when records in it may still be changed by their author.
type State struct {
	Name     string `json:"name"`
	Editable bool   `json:"editable"`
}

type Transition struct {
	Name string `json:"name"`
	From State  `json:"from"`
	To   State  `json:"to"`
}

func NewStateMachine(states []State, transitions []Transition) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions}
}

func (sm *StateMachine) AvailableTransitions(fromState string, toState string) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if (fromState == "" || fromState == transition.From.Name) && (toState == "" || toState == transition.To.Name) {
			r = append(r, transition)
		}
	}
	return r
}

// Transit finds the named transition leaving fromState.
func (sm *StateMachine) Transit(fromState string, transitionName string) (*Transition, bool) {
	for _, transition := range sm.AvailableTransitions(fromState, "") {
		if transition.Name == transitionName {
			t := transition
			return &t, true
		}
	}
	return nil, false
}

func (sm *StateMachine) Editable(stateName string) bool {
	for _, s := range sm.States {
		if s.Name == stateName {
			return s.Editable
		}
	}
	return false
}

func (sm *StateMachine) IsTerminal(stateName string) bool {
	return len(sm.AvailableTransitions(stateName, "")) == 0
}
