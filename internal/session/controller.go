package session

import (
	"context"
	"sync"

	"github.com/crystalafinch/authentication/internal/auth/dto"
	"github.com/crystalafinch/authentication/internal/report"
	"github.com/crystalafinch/authentication/internal/session/broadcast"
)

const (
	contextLoginAttempt         = "login_attempt"
	contextCreateAccountAttempt = "create_account_attempt"
)

// AuthAPI is the server's auth surface as seen by the client.
type AuthAPI interface {
	CheckAuth(ctx context.Context) (*dto.UserOutput, error)
	SignIn(ctx context.Context, creds dto.CredentialsInput) (*dto.UserOutput, error)
	CreateAccount(ctx context.Context, creds dto.CredentialsInput) (*dto.UserOutput, error)
	SignOut(ctx context.Context) error
}

// Navigator moves the UI between views.
type Navigator interface {
	Navigate(to string)
	NavigateToSignIn()
}

// Announcer surfaces messages through an accessible live region. Failures are
// announced, never thrown at the UI.
type Announcer interface {
	Announce(message string, assertive bool)
}

// NoopAnnouncer is the default when no live region is wired.
type NoopAnnouncer struct{}

func (NoopAnnouncer) Announce(string, bool) {}

// Controller is the single source of truth for client-side auth state. All
// state changes flow through the pure reducer; the controller adds the side
// effects (requests, navigation, cross-tab broadcast, reporting) around it.
type Controller struct {
	api       AuthAPI
	nav       Navigator
	reporter  report.Reporter
	announcer Announcer

	mu         sync.Mutex
	state      State
	submitting bool
	stopped    bool
	sub        *broadcast.Subscription
	bus        *broadcast.Bus
}

func NewController(api AuthAPI, nav Navigator, bus *broadcast.Bus, reporter report.Reporter, announcer Announcer) *Controller {
	if announcer == nil {
		announcer = NoopAnnouncer{}
	}
	return &Controller{
		api:       api,
		nav:       nav,
		bus:       bus,
		reporter:  reporter,
		announcer: announcer,
		state:     InitialState(),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start performs the initial session check and begins listening for cross-tab
// events. Loading flips to false exactly once, whatever the outcome; a
// network failure is treated as "not signed in", not as an error state.
func (c *Controller) Start(ctx context.Context) {
	c.dispatch(Action{Type: SetLoading, Loading: true})

	user, err := c.api.CheckAuth(ctx)
	if err != nil {
		c.reporter.CaptureException(ctx, err, "", nil)
		c.announcer.Announce(err.Error(), true)
		user = nil
	}
	c.dispatch(Action{Type: SetUser, User: user})
	c.dispatch(Action{Type: SetLoading, Loading: false})

	c.mu.Lock()
	if !c.stopped && c.sub == nil {
		c.sub = c.bus.Subscribe(func(e broadcast.Event) {
			c.onBroadcast(ctx, e)
		})
	}
	c.mu.Unlock()
}

// Stop tears the controller down. Late responses from requests that were
// in flight when Stop was called are discarded.
func (c *Controller) Stop() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.stopped = true
	c.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

func (c *Controller) SignIn(ctx context.Context, creds dto.CredentialsInput, from string) {
	c.submitOnce(ctx, creds, from, contextLoginAttempt, c.api.SignIn)
}

func (c *Controller) CreateAccount(ctx context.Context, creds dto.CredentialsInput, from string) {
	c.submitOnce(ctx, creds, from, contextCreateAccountAttempt, c.api.CreateAccount)
}

// SignOut ends the session. The endpoint call is best effort: a failure is
// reported and announced but never keeps the local state signed in.
func (c *Controller) SignOut(ctx context.Context) {
	if err := c.api.SignOut(ctx); err != nil {
		c.reporter.CaptureException(ctx, err, "", nil)
		c.announcer.Announce(err.Error(), true)
	}

	c.dispatch(Action{Type: Reset})
	c.nav.NavigateToSignIn()
	c.broadcastEvent(broadcast.SignedOut)
}

// submitOnce is the shared sign-in / create-account path with the
// single-flight guard: while one submission is outstanding a second call is
// dropped.
func (c *Controller) submitOnce(ctx context.Context, creds dto.CredentialsInput, from, contextName string,
	call func(context.Context, dto.CredentialsInput) (*dto.UserOutput, error)) {
	if !c.beginSubmit() {
		return
	}
	defer c.endSubmit()

	user, err := call(ctx, creds)

	c.mu.Lock()
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		// The view is gone; drop the late response.
		return
	}

	if err != nil {
		c.reporter.CaptureException(ctx, err, contextName, map[string]any{"email": creds.Email})
		c.announcer.Announce(err.Error(), true)
		return
	}

	c.dispatch(Action{Type: SetUser, User: user})
	c.nav.Navigate(from)
	c.broadcastEvent(broadcast.SignedIn)
}

// onBroadcast reacts to auth events from other tabs: a sign-out anywhere
// signs this tab out; a sign-in elsewhere re-checks the session so this tab
// picks up the new user without its own credentials.
func (c *Controller) onBroadcast(ctx context.Context, e broadcast.Event) {
	switch e.Type {
	case broadcast.SignedOut:
		c.dispatch(Action{Type: Reset})
		c.nav.NavigateToSignIn()
	case broadcast.SignedIn:
		user, err := c.api.CheckAuth(ctx)
		if err != nil {
			c.reporter.CaptureException(ctx, err, "", nil)
			return
		}
		c.dispatch(Action{Type: SetUser, User: user})
	}
}

func (c *Controller) dispatch(a Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.state = Reduce(c.state, a)
}

func (c *Controller) broadcastEvent(t broadcast.EventType) {
	c.mu.Lock()
	sub := c.sub
	c.mu.Unlock()

	if sub != nil {
		sub.Broadcast(t)
	} else if c.bus != nil {
		c.bus.Publish(t)
	}
}

func (c *Controller) beginSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting || c.stopped {
		return false
	}
	c.submitting = true
	return true
}

func (c *Controller) endSubmit() {
	c.mu.Lock()
	c.submitting = false
	c.mu.Unlock()
}
