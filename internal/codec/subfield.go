// Package codec holds the format-neutral building blocks shared by the
// transfer encoders and decoders: the subfield codec that moves structured
// values across text-only format boundaries, the cell sanitizer for
// delimited output, and the stream pipeline used by streamed exports.
package codec

import (
	"encoding/json"
	"fmt"
)

// ToText renders a structured value as canonical JSON text. Plain strings
// and nil pass through unchanged so repeated application is a no-op.
func ToText(value any) any {
	switch value.(type) {
	case nil, string:
		return value
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(encoded)
}

// FromText parses structured text back into its value form. When the text
// is not parseable the original string is returned unchanged with ok=false;
// the caller records a soft warning rather than failing the record, so
// partially corrupted structured data survives as an opaque string.
func FromText(text string) (any, bool) {
	var out any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return text, false
	}
	return out, true
}
