package codec

import "testing"

func TestToTextSerializesStructuredValues(t *testing.T) {
	got := ToText(map[string]any{"units": "metric"})
	if got != `{"units":"metric"}` {
		t.Fatalf("unexpected serialization: %v", got)
	}

	if ToText(nil) != nil {
		t.Fatalf("expected nil to pass through")
	}
	if ToText("already text") != "already text" {
		t.Fatalf("expected string to pass through")
	}
}

func TestFromTextRoundTrip(t *testing.T) {
	value, ok := FromText(`[{"name":"squat","sets":3}]`)
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	list, isList := value.([]any)
	if !isList || len(list) != 1 {
		t.Fatalf("unexpected parsed value: %#v", value)
	}

	text := ToText(value)
	if text != `[{"name":"squat","sets":3}]` {
		t.Fatalf("unexpected canonical text: %v", text)
	}
}

func TestFromTextRetainsUnparseableText(t *testing.T) {
	value, ok := FromText("{not json")
	if ok {
		t.Fatalf("expected parse failure")
	}
	if value != "{not json" {
		t.Fatalf("expected original text back, got %#v", value)
	}
}

func TestSanitizeCellNeutralizesFormulaPrefixes(t *testing.T) {
	cases := map[string]string{
		"=2+2":        "'=2+2",
		"+1234":       "'+1234",
		"-cmd":        "'-cmd",
		"@tag":        "'@tag",
		"plain value": "plain value",
	}
	for in, want := range cases {
		if got := SanitizeCell(in); got != want {
			t.Fatalf("SanitizeCell(%q) = %v, want %q", in, got, want)
		}
	}

	if got := SanitizeCell(-12.5); got != -12.5 {
		t.Fatalf("expected non-string to pass through, got %v", got)
	}
	if got := SanitizeCell(""); got != "" {
		t.Fatalf("expected empty string to pass through, got %v", got)
	}
}

func TestSectionMarkerRoundTrip(t *testing.T) {
	cell := SectionMarker("profiles")
	if cell != "dataType:profiles" {
		t.Fatalf("unexpected marker cell: %q", cell)
	}

	name, ok := ParseSectionMarker(cell)
	if !ok || name != "profiles" {
		t.Fatalf("expected profiles marker, got %q ok=%v", name, ok)
	}

	if _, ok := ParseSectionMarker("name"); ok {
		t.Fatalf("did not expect a plain cell to parse as a marker")
	}
	if _, ok := ParseSectionMarker("dataType:"); ok {
		t.Fatalf("did not expect an empty marker to parse")
	}
}
