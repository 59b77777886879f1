package domain

import "fmt"

// DefaultDiagnosticLimit caps the number of diagnostic messages recorded
// per transfer operation.
const DefaultDiagnosticLimit = 10

// TruncationMarker is appended once when the diagnostic limit is reached.
const TruncationMarker = "too many errors, truncating"

// Diagnostics collects human-readable failure messages in discovery order,
// up to a fixed capacity. After the cap a single truncation marker is
// appended and further messages are dropped, though callers keep counting
// failures independently.
type Diagnostics struct {
	limit     int
	messages  []string
	truncated bool
}

// NewDiagnostics returns a collector with the given capacity. Non-positive
// limits fall back to DefaultDiagnosticLimit.
func NewDiagnostics(limit int) *Diagnostics {
	if limit <= 0 {
		limit = DefaultDiagnosticLimit
	}
	return &Diagnostics{limit: limit}
}

// Add records a message unless the collector is already truncated.
func (d *Diagnostics) Add(message string) {
	if d.truncated {
		return
	}
	if len(d.messages) >= d.limit {
		d.messages = append(d.messages, TruncationMarker)
		d.truncated = true
		return
	}
	d.messages = append(d.messages, message)
}

// Addf records a formatted message.
func (d *Diagnostics) Addf(format string, args ...any) {
	d.Add(fmt.Sprintf(format, args...))
}

// Messages returns the recorded messages, including the truncation marker
// when the cap was exceeded.
func (d *Diagnostics) Messages() []string {
	out := make([]string, len(d.messages))
	copy(out, d.messages)
	return out
}

// Truncated reports whether the collector dropped messages.
func (d *Diagnostics) Truncated() bool {
	return d.truncated
}
