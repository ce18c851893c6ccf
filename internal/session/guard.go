package session

const SignInPath = "/signin"

// Decision is the outcome of the route authorization gate.
type Decision struct {
	// Allow means the protected content may render.
	Allow bool

	// Pending means the initial session check has not finished; the caller
	// should hold rendering rather than redirect.
	Pending bool

	// RedirectTo is set when the viewer must sign in first. From carries the
	// originally requested path so sign-in can return the user there.
	RedirectTo string
	From       string
}

// Guard gates a protected route on the current session state.
func Guard(state State, requestedPath string) Decision {
	if state.Loading {
		return Decision{Pending: true}
	}
	if state.User != nil {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: SignInPath, From: requestedPath}
}
