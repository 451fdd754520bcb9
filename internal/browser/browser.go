// Package browser abstracts the automated browser the scraper drives.
//
// The portal is JavaScript-rendered, so a plain HTTP client cannot log in;
// the scraper works against these interfaces and the chromedp implementation
// in this package is the only piece that talks to a real browser.
package browser

import (
	"context"
	"time"
)

// Accessible roles used to locate form controls.
const (
	RoleTextbox = "textbox"
	RoleButton  = "button"
)

// Field identifies a form control by its accessible role and name rather
// than a positional selector.
type Field struct {
	Role string
	Name string
}

// Textbox returns a Field for a text input with the given accessible name.
func Textbox(name string) Field {
	return Field{Role: RoleTextbox, Name: name}
}

// Button returns a Field for a button with the given accessible name.
func Button(name string) Field {
	return Field{Role: RoleButton, Name: name}
}

// Session is a single isolated browser context. It is not safe for
// concurrent use and must be closed on every exit path.
type Session interface {
	// Navigate loads the given URL and waits for the navigation to commit.
	Navigate(ctx context.Context, url string) error
	// WaitLoaded waits for the current page's load to settle.
	WaitLoaded(ctx context.Context) error
	// Fill types a value into the form control identified by field.
	Fill(ctx context.Context, field Field, value string) error
	// Click activates the form control identified by field.
	Click(ctx context.Context, field Field) error
	// WaitVisible waits until the selector matches a visible element,
	// failing once the timeout elapses.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// Location returns the current page URL.
	Location(ctx context.Context) (string, error)
	// OuterHTML returns the rendered HTML of the first element matching
	// the selector.
	OuterHTML(ctx context.Context, selector string) (string, error)
	// Close releases the browser context. Safe to call more than once.
	Close() error
}

// Browser creates isolated sessions.
type Browser interface {
	NewSession(ctx context.Context) (Session, error)
}
