// Package schema infers typed column schemas from tidy tables so typed
// destinations (Arrow, Parquet, Avro, PostgreSQL) can pick storage types.
package schema

import (
	"math"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/models"
	"github.com/ajitpratap0/tidify/pkg/nested"
	stringpool "github.com/ajitpratap0/tidify/pkg/strings"
	"github.com/ajitpratap0/tidify/pkg/tidy"
)

// TypeInferenceEngine detects column types from cell values. Strings are
// never reinterpreted as numbers or booleans; only the scalar kinds the
// decoders produced count.
type TypeInferenceEngine struct {
	logger *zap.Logger

	// Format detection patterns
	datePatterns []*regexp.Regexp
	emailPattern *regexp.Regexp
	urlPattern   *regexp.Regexp
	uuidPattern  *regexp.Regexp

	// Configuration
	detectTimestamps bool
	formatThreshold  float64
}

// InferredType represents a type inference result for one column
type InferredType struct {
	Type         models.FieldType `json:"type"`
	Format       string           `json:"format,omitempty"`
	Nullable     bool             `json:"nullable"`
	NullCount    int              `json:"null_count"`
	Cardinality  int              `json:"cardinality"`
	NumericStats *NumericStats    `json:"numeric_stats,omitempty"`
	StringStats  *StringStats     `json:"string_stats,omitempty"`
}

// NumericStats holds statistics for numeric columns
type NumericStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// StringStats holds statistics for string columns
type StringStats struct {
	MinLength int `json:"min_length"`
	MaxLength int `json:"max_length"`
}

// NewTypeInferenceEngine creates a new type inference engine
func NewTypeInferenceEngine(logger *zap.Logger) *TypeInferenceEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &TypeInferenceEngine{
		logger:           logger,
		detectTimestamps: true,
		formatThreshold:  0.8,
	}

	engine.initializePatterns()

	return engine
}

// WithTimestampDetection turns promotion of RFC 3339 string columns to
// TypeTimestamp on or off.
func (e *TypeInferenceEngine) WithTimestampDetection(enabled bool) *TypeInferenceEngine {
	e.detectTimestamps = enabled
	return e
}

// InferSchema infers one field per table column, in column order.
func (e *TypeInferenceEngine) InferSchema(name string, t *tidy.Table) *models.Schema {
	fields := make([]models.Field, len(t.Columns))
	for j, column := range t.Columns {
		cells := make([]nested.Scalar, len(t.Rows))
		for i, row := range t.Rows {
			cells[i] = row[j]
		}

		inferred := e.InferType(cells)
		fields[j] = models.Field{
			Name:        column,
			Type:        inferred.Type,
			Format:      inferred.Format,
			Nullable:    inferred.Nullable,
			Description: generateFieldDescription(inferred),
		}
	}

	e.logger.Debug("inferred schema",
		zap.String("name", name),
		zap.Int("fields", len(fields)),
		zap.Int("rows", t.Len()))

	return &models.Schema{Name: name, Fields: fields}
}

// InferType infers the type of a column from its cells
func (e *TypeInferenceEngine) InferType(cells []nested.Scalar) *InferredType {
	inferred := &InferredType{Type: models.TypeNull}

	kinds := make(map[nested.ScalarKind]int)
	distinct := make(map[nested.Scalar]struct{})
	values := make([]nested.Scalar, 0, len(cells))

	for _, c := range cells {
		if c.IsNull() || c.IsAbsent() {
			inferred.NullCount++
			continue
		}
		kinds[c.Kind()]++
		distinct[c] = struct{}{}
		values = append(values, c)
	}
	inferred.Nullable = inferred.NullCount > 0
	inferred.Cardinality = len(distinct)

	switch {
	case len(kinds) == 0:
		return inferred
	case len(kinds) > 1:
		// Mixed kinds, default to string
		inferred.Type = models.TypeString
	case kinds[nested.KindBool] > 0:
		inferred.Type = models.TypeBoolean
	case kinds[nested.KindNumber] > 0:
		inferred.Type = numericType(values)
	default:
		inferred.Type = models.TypeString
		if e.detectTimestamps && allTimestamps(values) {
			inferred.Type = models.TypeTimestamp
		}
	}

	e.addTypeStatistics(inferred, values)

	if inferred.Type == models.TypeString && len(kinds) == 1 {
		e.detectStringFormat(inferred, values)
	}

	return inferred
}

func numericType(values []nested.Scalar) models.FieldType {
	for _, v := range values {
		if _, ok := v.Int64(); !ok {
			return models.TypeFloat
		}
	}
	return models.TypeInteger
}

func allTimestamps(values []nested.Scalar) bool {
	for _, v := range values {
		if _, ok := ParseTimestamp(v.Text()); !ok {
			return false
		}
	}
	return true
}

// ParseTimestamp parses an RFC 3339 timestamp with optional fractional
// seconds.
func ParseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// addTypeStatistics adds statistics based on type
func (e *TypeInferenceEngine) addTypeStatistics(inferred *InferredType, values []nested.Scalar) {
	switch inferred.Type {
	case models.TypeInteger, models.TypeFloat:
		stats := &NumericStats{Min: math.Inf(1), Max: math.Inf(-1)}
		for _, v := range values {
			f, ok := v.Float64()
			if !ok {
				continue
			}
			stats.Min = math.Min(stats.Min, f)
			stats.Max = math.Max(stats.Max, f)
		}
		inferred.NumericStats = stats
	case models.TypeString:
		stats := &StringStats{MinLength: math.MaxInt}
		for _, v := range values {
			n := len([]rune(v.String()))
			if n < stats.MinLength {
				stats.MinLength = n
			}
			if n > stats.MaxLength {
				stats.MaxLength = n
			}
		}
		inferred.StringStats = stats
	}
}

// detectStringFormat records a format shared by most values
func (e *TypeInferenceEngine) detectStringFormat(inferred *InferredType, values []nested.Scalar) {
	formatCounts := make(map[string]int)
	for _, v := range values {
		if format := e.detectFormat(v.Text()); format != "" {
			formatCounts[format]++
		}
	}

	threshold := int(math.Ceil(float64(len(values)) * e.formatThreshold))
	maxCount := 0
	for _, format := range []string{"date", "email", "url", "uuid"} {
		if count := formatCounts[format]; count > maxCount && count >= threshold {
			maxCount = count
			inferred.Format = format
		}
	}
}

// detectFormat detects the format of a string value
func (e *TypeInferenceEngine) detectFormat(value string) string {
	for _, pattern := range e.datePatterns {
		if pattern.MatchString(value) {
			return "date"
		}
	}

	if e.emailPattern.MatchString(value) {
		return "email"
	}

	if e.urlPattern.MatchString(value) {
		return "url"
	}

	if e.uuidPattern.MatchString(value) {
		return "uuid"
	}

	return ""
}

// generateFieldDescription generates a description based on inference
func generateFieldDescription(inferred *InferredType) string {
	desc := stringpool.Sprintf("Type: %s", inferred.Type)

	if inferred.Format != "" {
		desc = stringpool.Concat(desc, " (format: ", inferred.Format, ")")
	}

	if inferred.Nullable {
		desc = stringpool.Concat(desc, ", nullable")
	}

	return stringpool.Concat(desc, stringpool.Sprintf(", cardinality: %d", inferred.Cardinality))
}

// initializePatterns initializes regex patterns for format detection
func (e *TypeInferenceEngine) initializePatterns() {
	e.datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), // YYYY-MM-DD
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`), // MM/DD/YYYY
		regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`), // YYYY/MM/DD
	}

	e.emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	e.urlPattern = regexp.MustCompile(`^https?://[^\s]+$`)
	e.uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
}
