// Package toast carries user-facing notifications from the backend to the
// views: a builder that emits them on the event bus, a store that holds the
// visible list, and a feed that connects the two.
package toast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gitchest/gitchest/internal/events"
)

// EventName is the channel toasts are emitted on.
const EventName = "add-toast"

// Level is the severity of a toast.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// ErrInvalidLevel is returned for unknown level strings.
var ErrInvalidLevel = errors.New("invalid toast level")

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelInfo, LevelSuccess, LevelWarning, LevelError:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// IsValid reports whether l is a known level.
func (l Level) IsValid() bool {
	switch l {
	case LevelInfo, LevelSuccess, LevelWarning, LevelError:
		return true
	}
	return false
}

// Payload is the body of an add-toast event.
type Payload struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Level       Level   `json:"level"`
}

// Toast builds a Payload. The zero level is info.
//
//	err := toast.New().Title("Added user").Description(login).Success().Send(bus)
type Toast struct {
	p Payload
}

// New starts an info toast with an empty title.
func New() Toast {
	return Toast{p: Payload{Level: LevelInfo}}
}

func (t Toast) Title(title string) Toast {
	t.p.Title = title
	return t
}

func (t Toast) Description(description string) Toast {
	t.p.Description = &description
	return t
}

func (t Toast) Info() Toast    { return t.level(LevelInfo) }
func (t Toast) Success() Toast { return t.level(LevelSuccess) }
func (t Toast) Warning() Toast { return t.level(LevelWarning) }
func (t Toast) Error() Toast   { return t.level(LevelError) }

// WithLevel sets a level parsed at runtime.
func (t Toast) WithLevel(l Level) Toast { return t.level(l) }

func (t Toast) level(l Level) Toast {
	t.p.Level = l
	return t
}

// Build returns the event payload.
func (t Toast) Build() Payload {
	return t.p
}

// Send emits the toast on EventName.
func (t Toast) Send(e events.Emitter) error {
	if err := e.Emit(EventName, t.p); err != nil {
		return fmt.Errorf("send toast %q: %w", t.p.Title, err)
	}
	return nil
}
