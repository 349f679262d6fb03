package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-media/pkg/simplemedia"
)

// DefaultSchema is the schema holding the media table
const DefaultSchema = "media"

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplemedia.Repository using PostgreSQL
type Repository struct {
	db     DBTX
	schema string
	table  string
}

// New creates a new PostgreSQL repository using DefaultSchema
func New(db DBTX) *Repository {
	return NewWithSchema(db, DefaultSchema)
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return New(pool)
}

// NewWithSchema creates a repository whose media table lives in schema
func NewWithSchema(db DBTX, schema string) *Repository {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Repository{
		db:     db,
		schema: schema,
		table:  pgx.Identifier{schema, "media"}.Sanitize(),
	}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return simplemedia.ErrMediaExists
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return simplemedia.ErrMediaNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const mediaColumns = `id, context, name, description, enabled, author_name, copyright,
		cdn_is_flushable, provider_name, provider_status, provider_reference,
		content_type, size, created_at, updated_at`

func scanMedia(row pgx.Row) (*simplemedia.Media, error) {
	var m simplemedia.Media
	err := row.Scan(
		&m.ID, &m.Context, &m.Name, &m.Description, &m.Enabled, &m.AuthorName, &m.Copyright,
		&m.CDNIsFlushable, &m.ProviderName, &m.ProviderStatus, &m.ProviderReference,
		&m.ContentType, &m.Size, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) CreateMedia(ctx context.Context, media *simplemedia.Media) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`, r.table, mediaColumns)

	_, err := r.db.Exec(ctx, query,
		media.ID, media.Context, media.Name, media.Description, media.Enabled,
		media.AuthorName, media.Copyright, media.CDNIsFlushable, media.ProviderName,
		media.ProviderStatus, media.ProviderReference, media.ContentType, media.Size,
		media.CreatedAt, media.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create media", err)
	}

	return nil
}

func (r *Repository) GetMedia(ctx context.Context, id uuid.UUID) (*simplemedia.Media, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, mediaColumns, r.table)

	media, err := scanMedia(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get media", err)
	}

	return media, nil
}

func (r *Repository) UpdateMedia(ctx context.Context, media *simplemedia.Media) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			context = $2, name = $3, description = $4, enabled = $5,
			author_name = $6, copyright = $7, cdn_is_flushable = $8,
			provider_name = $9, provider_status = $10, provider_reference = $11,
			content_type = $12, size = $13, created_at = $14, updated_at = $15
		WHERE id = $1`, r.table)

	tag, err := r.db.Exec(ctx, query,
		media.ID, media.Context, media.Name, media.Description, media.Enabled,
		media.AuthorName, media.Copyright, media.CDNIsFlushable, media.ProviderName,
		media.ProviderStatus, media.ProviderReference, media.ContentType, media.Size,
		media.CreatedAt, media.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update media", err)
	}
	if tag.RowsAffected() == 0 {
		return simplemedia.ErrMediaNotFound
	}

	return nil
}

func (r *Repository) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return r.handlePostgresError("delete media", err)
	}
	if tag.RowsAffected() == 0 {
		return simplemedia.ErrMediaNotFound
	}
	return nil
}

// ListMedia returns the records of mediaContext, newest first. An empty
// context lists every record.
func (r *Repository) ListMedia(ctx context.Context, mediaContext string) ([]*simplemedia.Media, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE $1::text = '' OR context = $1::text
		ORDER BY created_at DESC`, mediaColumns, r.table)

	rows, err := r.db.Query(ctx, query, mediaContext)
	if err != nil {
		return nil, r.handlePostgresError("list media", err)
	}
	defer rows.Close()

	var result []*simplemedia.Media
	for rows.Next() {
		media, err := scanMedia(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan media", err)
		}
		result = append(result, media)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list media", err)
	}

	return result, nil
}
