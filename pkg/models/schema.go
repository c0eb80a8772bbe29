// Package models defines the table schema shared by schema inference and
// the typed destinations.
package models

// FieldType is the storage type of a table column.
type FieldType string

const (
	// TypeNull is a column holding only nulls and absent cells
	TypeNull FieldType = "null"
	// TypeBoolean is a column of booleans
	TypeBoolean FieldType = "boolean"
	// TypeInteger is a column of integers that fit in 64 bits
	TypeInteger FieldType = "integer"
	// TypeFloat is a column of numbers with fractions or exponents
	TypeFloat FieldType = "float"
	// TypeTimestamp is a column of RFC 3339 timestamps
	TypeTimestamp FieldType = "timestamp"
	// TypeString is a column of strings or of mixed scalar kinds
	TypeString FieldType = "string"
)

// Schema defines the structure of a table.
type Schema struct {
	// Name identifies the schema (e.g., table name, record name)
	Name string `json:"name"`

	// Fields lists the columns in table order
	Fields []Field `json:"fields"`
}

// Field represents a single column in the schema.
type Field struct {
	// Name is the column name
	Name string `json:"name"`

	// Type is the inferred storage type
	Type FieldType `json:"type"`

	// Format refines string columns (email, url, uuid, date)
	Format string `json:"format,omitempty"`

	// Nullable is set when some cell is null or absent
	Nullable bool `json:"nullable"`

	// Description provides human-readable field information
	Description string `json:"description,omitempty"`
}

// Field returns the field named name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the field names in order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}
