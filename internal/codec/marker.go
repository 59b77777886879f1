package codec

import "strings"

// sectionMarkerPrefix is the reserved convention marking an entity-type
// boundary in flat delimited files: a row whose single field carries
// "dataType:<entity type>". A legitimate one-field data row matching the
// prefix would be misread as a marker; that ambiguity is inherited
// behavior and left as-is.
const sectionMarkerPrefix = "dataType:"

// SectionMarker renders the marker cell for an entity type.
func SectionMarker(entityType string) string {
	return sectionMarkerPrefix + entityType
}

// ParseSectionMarker reports whether cell is a section marker and, if so,
// the entity type it names.
func ParseSectionMarker(cell string) (string, bool) {
	trimmed := strings.TrimSpace(cell)
	if !strings.HasPrefix(trimmed, sectionMarkerPrefix) {
		return "", false
	}
	name := strings.TrimSpace(strings.TrimPrefix(trimmed, sectionMarkerPrefix))
	if name == "" {
		return "", false
	}
	return name, true
}
