package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/docufill/docufill/internal/core/domain"
)

type PlaceholderRepository struct {
	db *sql.DB
}

func NewPlaceholderRepository(db *sql.DB) *PlaceholderRepository {
	return &PlaceholderRepository{db: db}
}

const placeholderColumns = `id, document_id, raw_text, stable_name, type, description, context, span_start, span_end, filled_value, is_filled, created_at`

// CreateBulk inserts the extracted set in one transaction so a partially
// written placeholder list never becomes visible.
func (r *PlaceholderRepository) CreateBulk(ctx context.Context, placeholders []domain.Placeholder) error {
	if len(placeholders) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin placeholder tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO placeholders (
	id, document_id, raw_text, stable_name, type, description, context, span_start, span_end, filled_value, is_filled, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`)
	if err != nil {
		return fmt.Errorf("prepare placeholder insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range placeholders {
		_, err := stmt.ExecContext(ctx,
			p.ID, p.DocumentID, p.RawText, p.StableName, string(p.Type), p.Description,
			p.Context, p.SpanStart, p.SpanEnd, p.FilledValue, p.IsFilled, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert placeholder %s: %w", p.StableName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit placeholder tx: %w", err)
	}
	return nil
}

func (r *PlaceholderRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.Placeholder, error) {
	return r.list(ctx, `
SELECT `+placeholderColumns+`
FROM placeholders
WHERE document_id = $1
ORDER BY position ASC
`, documentID)
}

func (r *PlaceholderRepository) ListUnfilled(ctx context.Context, documentID string) ([]domain.Placeholder, error) {
	return r.list(ctx, `
SELECT `+placeholderColumns+`
FROM placeholders
WHERE document_id = $1 AND is_filled = FALSE
ORDER BY position ASC
`, documentID)
}

func (r *PlaceholderRepository) list(ctx context.Context, query, documentID string) ([]domain.Placeholder, error) {
	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list placeholders: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Placeholder, 0, 8)
	for rows.Next() {
		p, err := scanPlaceholder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan placeholder row: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate placeholders: %w", err)
	}
	return out, nil
}

func (r *PlaceholderRepository) GetByID(ctx context.Context, id string) (*domain.Placeholder, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+placeholderColumns+`
FROM placeholders
WHERE id = $1
`, id)

	p, err := scanPlaceholder(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrPlaceholderNotFound, "get placeholder", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan placeholder: %w", err)
	}
	return p, nil
}

func (r *PlaceholderRepository) Fill(ctx context.Context, id, value string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE placeholders
SET filled_value = $2, is_filled = TRUE
WHERE id = $1
`, id, value)
	if err != nil {
		return fmt.Errorf("fill placeholder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fill placeholder rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrPlaceholderNotFound, "fill placeholder", fmt.Errorf("id %s", id))
	}
	return nil
}

// Progress counts filled and total in a single query.
func (r *PlaceholderRepository) Progress(ctx context.Context, documentID string) (domain.Progress, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FILTER (WHERE is_filled), COUNT(*)
FROM placeholders
WHERE document_id = $1
`, documentID)

	var progress domain.Progress
	if err := row.Scan(&progress.Filled, &progress.Total); err != nil {
		return domain.Progress{}, fmt.Errorf("scan progress: %w", err)
	}
	return progress, nil
}

func scanPlaceholder(scan func(dest ...any) error) (*domain.Placeholder, error) {
	var p domain.Placeholder
	var ptype string
	err := scan(
		&p.ID, &p.DocumentID, &p.RawText, &p.StableName, &ptype, &p.Description,
		&p.Context, &p.SpanStart, &p.SpanEnd, &p.FilledValue, &p.IsFilled, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Type = domain.PlaceholderType(ptype)
	return &p, nil
}
