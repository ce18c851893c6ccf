package session

import "github.com/crystalafinch/authentication/internal/auth/dto"

// State is the client-side belief about the current session. Loading is true
// only during the initial check; every later transition is synchronous with
// the action that caused it.
type State struct {
	User    *dto.UserOutput
	Loading bool
}

type ActionType string

const (
	SetUser    ActionType = "set-user"
	SetLoading ActionType = "set-loading"
	Reset      ActionType = "reset"
)

type Action struct {
	Type    ActionType
	User    *dto.UserOutput
	Loading bool
}

func InitialState() State {
	return State{User: nil, Loading: true}
}

// Reduce is the pure transition function: data in, data out, no side effects.
func Reduce(s State, a Action) State {
	switch a.Type {
	case SetUser:
		s.User = a.User
		return s
	case SetLoading:
		s.Loading = a.Loading
		return s
	case Reset:
		return State{User: nil, Loading: false}
	default:
		return s
	}
}
