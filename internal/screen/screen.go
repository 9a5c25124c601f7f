// Package screen holds the contract between the router and the screens it
// stacks. Beyond Screen itself every interface is optional and discovered
// with a type assertion.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizwhiz/internal/ui/layout"
)

// Screen is one page of the app. View receives the body area only; the
// header and footer are drawn by the app frame.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider fills the header's level, window and timer readout.
type StatusProvider interface {
	Status() layout.Status
}

// Closer is called once when the router drops the screen, so it can
// cancel work still in flight.
type Closer interface {
	Close()
}
