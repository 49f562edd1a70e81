// Package view models the lookup form: which panel is visible, what the
// result alert says, and which response is allowed to update the form.
//
// The embedded browser script follows the same rules; State is what the
// server-rendered page is built from.
package view

import (
	"fmt"
	"strings"

	"github.com/TomasB/denylist/internal/suppression"
)

// Panel identifies the single panel rendered under the form.
type Panel string

const (
	PanelNone    Panel = "none"
	PanelLoading Panel = "loading"
	PanelResult  Panel = "result"
	PanelError   Panel = "error"
)

// Tone is the alert severity of a result.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
)

const (
	hintSubscribed = "Please be aware, this does NOT mean that the user is actually seeing messages, only that our system is not prevented from sending."
	hintSuppressed = "Reach out directly and ask the user for permission to re-subscribe them. Once approved, submit a support ticket."
)

// Outcome is a rendered lookup result.
type Outcome struct {
	IsSubscribed bool
	Message      string
	Hint         string
	Tone         Tone
}

// NewOutcome builds the alert for a lookup of email.
func NewOutcome(email string, r suppression.Result) Outcome {
	o := Outcome{
		IsSubscribed: r.IsSubscribed,
		Message:      ComposeMessage(email, r),
	}
	if r.IsSubscribed {
		o.Tone, o.Hint = ToneSuccess, hintSubscribed
	} else {
		o.Tone, o.Hint = ToneWarning, hintSuppressed
	}
	return o
}

// ComposeMessage returns the sentence shown in the result alert. The spacing
// around the optional parts is kept as operators know it, so a deliverable
// address reads "can  receive emails .".
func ComposeMessage(email string, r suppression.Result) string {
	not, reason := "", ""
	if !r.IsSubscribed {
		not = "NOT"
		msg := ""
		if r.Message != nil {
			msg = *r.Message
		}
		reason = "for the following reason: " + msg
	}
	return fmt.Sprintf("User at %s can %s receive emails %s.", email, not, reason)
}

// State is the form state. The zero value is the pristine form.
type State struct {
	Email   string
	Loading bool
	Error   string
	Outcome *Outcome

	submitted string
	seq       uint64
}

// SetEmail stores the field value, trimmed.
func (s *State) SetEmail(v string) {
	s.Email = strings.TrimSpace(v)
}

// CanSubmit reports whether the submit button is enabled.
func (s *State) CanSubmit() bool {
	return s.Email != ""
}

// Submit starts a lookup of the current email and returns its sequence
// number, which must be passed to Resolve.
func (s *State) Submit() uint64 {
	s.Error = ""
	s.Outcome = nil
	s.Loading = true
	s.submitted = s.Email
	s.seq++
	return s.seq
}

// Resolve applies the response of the lookup identified by seq. Responses to
// anything but the latest Submit are dropped and Resolve returns false.
func (s *State) Resolve(seq uint64, resp suppression.Response) bool {
	if seq != s.seq || !s.Loading {
		return false
	}
	s.Loading = false
	if resp.Error != "" {
		s.Error = resp.Error
		s.Outcome = nil
		return true
	}
	if resp.Data != nil {
		o := NewOutcome(s.submitted, *resp.Data)
		s.Outcome = &o
	}
	return true
}

// Clear resets the form and discards any lookup still in flight.
func (s *State) Clear() {
	s.Email = ""
	s.Loading = false
	s.Error = ""
	s.Outcome = nil
	s.submitted = ""
	s.seq++
}

// Pristine reports whether the form is in its initial state.
func (s *State) Pristine() bool {
	return s.Email == "" && !s.Loading && s.Error == "" && s.Outcome == nil
}

// Panel returns the panel to render. Loading hides both result and error,
// and an error hides any data.
func (s *State) Panel() Panel {
	switch {
	case s.Loading:
		return PanelLoading
	case s.Error != "":
		return PanelError
	case s.Outcome != nil:
		return PanelResult
	default:
		return PanelNone
	}
}
