// Package changepassword drives the change-password form: it checks the two
// entries match, posts the new password with the emailed key and reports
// the outcome through a UI.
package changepassword

import (
	"context"
	"sync"
)

const (
	mismatchMessage = "Passwords do not match."
	successMessage  = "Login using your new password."
	fallbackMessage = "Failed to change password. Use the link sent to your email address."
	loginPath       = "/login"
	changePath      = "/users/change-password"
)

// State is the form's lifecycle position.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailure    State = "failure"
)

// Notification is a transient success or info message.
type Notification struct {
	Type string
	Text string
}

// UI is what the view shows to the user.
type UI interface {
	Alert(message string)
	Notify(n Notification)
	Go(path string)
}

// Request is the body posted to change the password.
type Request struct {
	ChangePasswordKey string `json:"change_password_key"`
	Password          string `json:"password"`
}

// Response is what the server answered. Body carries the plain-text reason
// on failure.
type Response struct {
	OK   bool
	Body string
}

// Poster sends the change request. A non-nil error means the request never
// got an answer.
type Poster interface {
	Post(ctx context.Context, path string, req Request) (Response, error)
}

// View is bound to one change-password key for its lifetime.
type View struct {
	key    string
	poster Poster
	ui     UI

	mu    sync.Mutex
	state State
}

func NewView(key string, poster Poster, ui UI) *View {
	return &View{key: key, poster: poster, ui: ui, state: StateIdle}
}

// State returns the current lifecycle position.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// ChangePassword submits password if repeat matches it. A mismatch alerts
// and leaves the view idle without touching the network.
func (v *View) ChangePassword(ctx context.Context, password, repeat string) State {
	if password != repeat {
		v.ui.Alert(mismatchMessage)
		return v.State()
	}

	v.setState(StateSubmitting)
	resp, err := v.poster.Post(ctx, changePath, Request{ChangePasswordKey: v.key, Password: password})

	switch {
	case err != nil:
		v.ui.Alert(err.Error())
	case !resp.OK && resp.Body != "":
		v.ui.Alert(resp.Body)
	case !resp.OK:
		v.ui.Alert(fallbackMessage)
	default:
		v.ui.Notify(Notification{Type: "success", Text: successMessage})
		v.ui.Go(loginPath)
		return v.setState(StateSuccess)
	}
	return v.setState(StateFailure)
}

func (v *View) setState(s State) State {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = s
	return s
}
