package schema

// FieldType represents the type of a field in an entity schema.
type FieldType string

const (
	FieldTypeString         FieldType = "string"
	FieldTypeNumber         FieldType = "number"
	FieldTypeInteger        FieldType = "integer"
	FieldTypeDate           FieldType = "date"
	FieldTypeUUID           FieldType = "uuid"
	FieldTypeNullableString FieldType = "nullable-string"
)

// FieldDefinition describes one field of an entity schema.
type FieldDefinition struct {
	Name     string
	Type     FieldType
	Required bool
	// Structured marks values that must flow through the subfield codec
	// when crossing a non-native-structured format boundary.
	Structured bool
}

// EntitySchema is the static definition of one supported entity type:
// its fields, the storage table records are written to, the column(s)
// used for upsert deduplication, and the column stamped with the owner
// identity on every write.
type EntitySchema struct {
	Name        string
	Table       string
	Fields      []FieldDefinition
	ConflictKey []string
	// OwnerField is overwritten with the caller's owner id before write.
	// For profiles it is the primary key itself.
	OwnerField string
}

// Field returns the definition for name, if declared.
func (s EntitySchema) Field(name string) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// FieldNames returns field names in declaration order.
func (s EntitySchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// StructuredFields returns the names of structured fields in declaration order.
func (s EntitySchema) StructuredFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Structured {
			names = append(names, f.Name)
		}
	}
	return names
}

// IsNumeric reports whether the field type carries a numeric value.
func (t FieldType) IsNumeric() bool {
	return t == FieldTypeNumber || t == FieldTypeInteger
}
