package codec

import "strings"

// formulaPrefixes are the characters downstream spreadsheet tooling treats
// as the start of a formula when it opens a delimited file.
const formulaPrefixes = "=+-@\t\r\n"

// SanitizeCell neutralizes formula injection in delimited output: a string
// whose first character could start a formula is prefixed with a single
// quote. Non-string values pass through unchanged.
func SanitizeCell(value any) any {
	text, ok := value.(string)
	if !ok || text == "" {
		return value
	}
	if strings.IndexByte(formulaPrefixes, text[0]) >= 0 {
		return "'" + text
	}
	return value
}
