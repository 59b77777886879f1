package schema

import (
	"errors"
	"fmt"
)

// ErrUnknownEntityType is returned when a lookup names an entity type the
// registry does not carry.
var ErrUnknownEntityType = errors.New("unsupported entity type")

// Entity type names as used throughout validation and in-memory handling.
// Storage table names differ for workouts; the schema's Table field is the
// only place that mapping lives.
const (
	TypeProfiles    = "profiles"
	TypeWorkouts    = "workouts"
	TypeWorkoutLogs = "workout_logs"
)

// schemas is the process-wide, read-only registry. Declaration order here
// is the canonical ordering used when a caller requests "all types".
var schemas = []EntitySchema{
	{
		Name:        TypeProfiles,
		Table:       "profiles",
		ConflictKey: []string{"id"},
		OwnerField:  "id",
		Fields: []FieldDefinition{
			{Name: "id", Type: FieldTypeUUID, Required: true},
			{Name: "name", Type: FieldTypeString, Required: true},
			{Name: "email", Type: FieldTypeString},
			{Name: "age", Type: FieldTypeInteger},
			{Name: "height_cm", Type: FieldTypeNumber},
			{Name: "weight_kg", Type: FieldTypeNumber},
			{Name: "preferences", Type: FieldTypeString, Structured: true},
			{Name: "bio", Type: FieldTypeNullableString},
		},
	},
	{
		Name:        TypeWorkouts,
		Table:       "workout_plans",
		ConflictKey: []string{"id"},
		OwnerField:  "user_id",
		Fields: []FieldDefinition{
			{Name: "id", Type: FieldTypeUUID, Required: true},
			{Name: "user_id", Type: FieldTypeUUID},
			{Name: "name", Type: FieldTypeString, Required: true},
			{Name: "description", Type: FieldTypeNullableString},
			{Name: "difficulty", Type: FieldTypeString},
			{Name: "exercises", Type: FieldTypeString, Structured: true},
			{Name: "created_at", Type: FieldTypeDate},
		},
	},
	{
		Name:        TypeWorkoutLogs,
		Table:       "workout_logs",
		ConflictKey: []string{"log_id"},
		OwnerField:  "user_id",
		Fields: []FieldDefinition{
			{Name: "log_id", Type: FieldTypeUUID, Required: true},
			{Name: "user_id", Type: FieldTypeUUID},
			{Name: "plan_id", Type: FieldTypeUUID},
			{Name: "performed_at", Type: FieldTypeDate, Required: true},
			{Name: "duration_min", Type: FieldTypeNumber},
			{Name: "entries", Type: FieldTypeString, Structured: true},
			{Name: "notes", Type: FieldTypeNullableString},
		},
	},
}

// For returns the schema registered for entityType.
func For(entityType string) (EntitySchema, error) {
	for _, s := range schemas {
		if s.Name == entityType {
			return s, nil
		}
	}
	return EntitySchema{}, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityType)
}

// Known reports whether entityType is registered.
func Known(entityType string) bool {
	_, err := For(entityType)
	return err == nil
}

// EntityTypes returns all registered entity type names in canonical order.
func EntityTypes() []string {
	names := make([]string, 0, len(schemas))
	for _, s := range schemas {
		names = append(names, s.Name)
	}
	return names
}
