// Package postgresql provides a destination that loads the table into a
// PostgreSQL table with COPY.
package postgresql

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/base"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/models"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/schema"
	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// PostgreSQLDestination loads rows in one transaction: optional CREATE
// TABLE IF NOT EXISTS, optional TRUNCATE, then COPY.
type PostgreSQLDestination struct {
	*base.BaseConnector

	settings   config.PostgresConfig
	poolConfig *pgxpool.Config
	retry      *base.RetryPolicy
	pool       *pgxpool.Pool
}

// NewPostgreSQLDestination creates a postgresql destination. The DSN is
// parsed here; the connection is opened by Write.
func NewPostgreSQLDestination(cfg *config.Config, deps core.Deps) (core.Destination, error) {
	settings := cfg.Output.Postgres
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(settings.DSN)
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeConfig, "failed to parse PostgreSQL connection string")
	}
	poolConfig.MaxConns = 2
	poolConfig.MinConns = 0
	if cfg.Timeouts.Connection > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.Timeouts.Connection
	}

	b := base.NewBaseConnector("postgresql", core.ConnectorTypeDestination, deps.Logger)
	return &PostgreSQLDestination{
		BaseConnector: b,
		settings:      settings,
		poolConfig:    poolConfig,
		retry:         base.ConnectRetryPolicy(cfg.Timeouts.Connection, b.GetLogger()),
	}, nil
}

func (d *PostgreSQLDestination) Write(ctx context.Context, table *tidy.Table) error {
	inferred := schema.NewTypeInferenceEngine(d.GetLogger()).InferSchema(d.settings.Table, table)
	if len(inferred.Fields) == 0 {
		return tidyerrors.New(tidyerrors.ErrorTypeData, "PostgreSQL output needs at least one column").
			WithDetail("table", d.settings.QualifiedTable())
	}

	if err := d.connect(ctx); err != nil {
		return err
	}

	ident := d.identifier()
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if d.settings.CreateTable {
		if _, err := tx.Exec(ctx, createTableSQL(ident, inferred)); err != nil {
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to create table").
				WithDetail("table", d.settings.QualifiedTable())
		}
	}
	if d.settings.Truncate {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+ident.Sanitize()); err != nil {
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to truncate table").
				WithDetail("table", d.settings.QualifiedTable())
		}
	}

	rows, err := copyRows(table, inferred)
	if err != nil {
		return err
	}
	n, err := tx.CopyFrom(ctx, ident, inferred.Names(), pgx.CopyFromRows(rows))
	if err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "COPY failed").
			WithDetail("table", d.settings.QualifiedTable())
	}

	if err := tx.Commit(ctx); err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "failed to commit").
			WithDetail("table", d.settings.QualifiedTable())
	}

	d.GetLogger().Info("loaded table",
		zap.String("table", d.settings.QualifiedTable()),
		zap.Int64("rows", n),
		zap.Int("columns", len(inferred.Fields)))
	return nil
}

// Close releases the connection pool.
func (d *PostgreSQLDestination) Close(_ context.Context) error {
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
	return nil
}

func (d *PostgreSQLDestination) connect(ctx context.Context) error {
	if d.pool != nil {
		return nil
	}

	return d.retry.Execute(ctx, "postgresql connect", func(ctx context.Context) error {
		pool, err := pgxpool.NewWithConfig(ctx, d.poolConfig)
		if err != nil {
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeConfig, "invalid PostgreSQL pool settings")
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "failed to reach PostgreSQL")
		}
		d.pool = pool
		d.GetLogger().Debug("connected to PostgreSQL",
			zap.String("host", d.poolConfig.ConnConfig.Host),
			zap.String("database", d.poolConfig.ConnConfig.Database))
		return nil
	})
}

func (d *PostgreSQLDestination) identifier() pgx.Identifier {
	if d.settings.Schema == "" {
		return pgx.Identifier{d.settings.Table}
	}
	return pgx.Identifier{d.settings.Schema, d.settings.Table}
}

// columnType maps inferred field types to PostgreSQL column types.
func columnType(t models.FieldType) string {
	switch t {
	case models.TypeBoolean:
		return "boolean"
	case models.TypeInteger:
		return "bigint"
	case models.TypeFloat:
		return "double precision"
	case models.TypeTimestamp:
		return "timestamptz"
	default:
		return "text"
	}
}

func createTableSQL(ident pgx.Identifier, s *models.Schema) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(ident.Sanitize())
	b.WriteString(" (")
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{f.Name}.Sanitize())
		b.WriteByte(' ')
		b.WriteString(columnType(f.Type))
	}
	b.WriteString(")")
	return b.String()
}

// copyRows converts the table to COPY values in schema column order.
func copyRows(t *tidy.Table, s *models.Schema) ([][]interface{}, error) {
	selected := t.Select(s.Names()...)
	rows := make([][]interface{}, len(selected.Rows))
	for i, row := range selected.Rows {
		values := make([]interface{}, len(row))
		for j, cell := range row {
			v, err := copyValue(cell, s.Fields[j].Type)
			if err != nil {
				return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "cell does not match column type").
					WithDetail("row", i).
					WithDetail("column", s.Fields[j].Name)
			}
			values[j] = v
		}
		rows[i] = values
	}
	return rows, nil
}

func copyValue(cell nested.Scalar, t models.FieldType) (interface{}, error) {
	if cell.IsNull() || cell.IsAbsent() {
		return nil, nil
	}
	switch t {
	case models.TypeBoolean:
		if cell.Kind() == nested.KindBool {
			return cell.BoolValue(), nil
		}
	case models.TypeInteger:
		if i, ok := cell.Int64(); ok {
			return i, nil
		}
	case models.TypeFloat:
		if f, ok := cell.Float64(); ok {
			return f, nil
		}
	case models.TypeTimestamp:
		if ts, ok := schema.ParseTimestamp(cell.Text()); ok {
			return ts.UTC().Truncate(time.Microsecond), nil
		}
	default:
		return cell.String(), nil
	}
	return nil, tidyerrors.New(tidyerrors.ErrorTypeData, "unexpected cell kind").
		WithDetail("kind", cell.Kind().String()).
		WithDetail("type", string(t))
}
