package domain

// RawRecord is the untyped field map read from a decoded upload or fetched
// from storage, prior to validation. It is the only pre-validation shape;
// everything downstream of the validator works with Record.
type RawRecord map[string]any

// Record is a raw record that passed schema validation: required fields
// present and typed, structured fields serialized to their text form, and
// owned by exactly one transfer operation.
type Record struct {
	EntityType string
	Fields     map[string]any
}

// BatchOutcome is the result of writing one entity type's records in
// bounded chunks. Counts and messages are merged into the operation's
// TransferResult and discarded.
type BatchOutcome struct {
	Successful int
	Failed     int
	Messages   []string
	// Err captures the last underlying storage error, if any chunk failed.
	Err error
}

// TransferResult is the aggregate outcome of one export or import.
// Successful+Failed <= Total while rows may still be skipped before being
// dispositioned; once every counted record is dispositioned the two sides
// are equal.
type TransferResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
}
