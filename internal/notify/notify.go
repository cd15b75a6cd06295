// Package notify pushes engine events (queued approvals, terminal listings)
// to a chat platform so a human sees them without polling the CLI.
package notify

import "context"

// Severity levels for events.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeveritySuccess = "success"
)

// Event is a notification formatted for chat display.
type Event struct {
	Title    string
	Body     string
	Severity string
	Fields   []Field
}

// Field is a key-value pair displayed alongside an event.
type Field struct {
	Name  string
	Value string
}

// Notifier is the outbound port that platform adapters implement. This
// system only pushes; there is no inbound command surface.
type Notifier interface {
	// Send delivers one event to the configured channel.
	Send(ctx context.Context, e Event) error

	// Close releases the adapter's resources.
	Close() error
}

// Nop is a Notifier that discards everything, used when no platform is
// configured.
type Nop struct{}

func (Nop) Send(ctx context.Context, e Event) error { return nil }
func (Nop) Close() error                            { return nil }

// SeverityColor maps a severity to a sidebar color hint shared by the
// adapters.
func SeverityColor(severity string) string {
	switch severity {
	case SeveritySuccess:
		return "#36a64f"
	case SeverityWarning:
		return "#daa038"
	default:
		return "#439fe0"
	}
}
