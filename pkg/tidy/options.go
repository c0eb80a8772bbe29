package tidy

import (
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// CollisionPolicy decides what happens when two sibling branches produce
// the same column name in one row.
type CollisionPolicy string

const (
	// CollisionOverwrite keeps the column position of the first write and
	// the value of the last one.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionError aborts the call with an ErrorTypeConflict error.
	CollisionError CollisionPolicy = "error"
)

const (
	// DefaultSeparator joins path segments into column names.
	DefaultSeparator = "."
	// DefaultRootColumn names the column of a scalar given at the root.
	DefaultRootColumn = "value"
	// DefaultIndexSuffix names the position column of a sequence.
	DefaultIndexSuffix = "index"
)

// Options configures one Flatten or Tidify call. The zero Options is valid
// and means the defaults.
type Options struct {
	// Separator joins path segments. Default ".".
	Separator string
	// RootColumn names the column when a scalar is flattened with an
	// empty prefix. Default "value".
	RootColumn string
	// IndexSuffix is the last segment of sequence position columns; a
	// sequence at the root gets a column named exactly IndexSuffix.
	// Default "index".
	IndexSuffix string
	// Exclude lists joined column paths whose subtrees are skipped.
	Exclude []string
	// Collision selects the collision policy. Default CollisionOverwrite.
	Collision CollisionPolicy
	// OnCollision, when set, is called with the column name of every
	// collision under either policy.
	OnCollision func(column string)
	// SortColumns makes Tidify order columns with SortColumns instead of
	// first-seen order.
	SortColumns bool
	// MaxRows bounds the size of every intermediate row set. 0 means
	// unlimited.
	MaxRows int
}

// DefaultOptions returns Options with every default spelled out.
func DefaultOptions() Options {
	return Options{
		Separator:   DefaultSeparator,
		RootColumn:  DefaultRootColumn,
		IndexSuffix: DefaultIndexSuffix,
		Collision:   CollisionOverwrite,
	}
}

func (o Options) withDefaults() Options {
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if o.RootColumn == "" {
		o.RootColumn = DefaultRootColumn
	}
	if o.IndexSuffix == "" {
		o.IndexSuffix = DefaultIndexSuffix
	}
	if o.Collision == "" {
		o.Collision = CollisionOverwrite
	}
	return o
}

// Validate reports invalid option values.
func (o Options) Validate() error {
	o = o.withDefaults()

	switch o.Collision {
	case CollisionOverwrite, CollisionError:
	default:
		return tidyerrors.New(tidyerrors.ErrorTypeValidation, "unknown collision policy").
			WithDetail("collision", string(o.Collision))
	}
	if o.MaxRows < 0 {
		return tidyerrors.New(tidyerrors.ErrorTypeValidation, "max rows must not be negative").
			WithDetail("max_rows", o.MaxRows)
	}
	return nil
}
