package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

type FailureRepository struct {
	db *sql.DB
}

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

func (r *FailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO compliance_analysis_failures
  (institution_id, user_id, title, phase, message, details_json, created_at)
VALUES (?,?,?,?,?,?,?)
`
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		f.InstitutionID, f.UserID, stringOrDash(f.Title), stringOrDash(f.Phase),
		stringOrDash(f.Message), detailsJSON(f.DetailsJSON), created,
	)
	return err
}

// ListRecent diagnosa terbaru per instansi, dipakai saat investigasi
func (r *FailureRepository) ListRecent(ctx context.Context, institutionID int64, limit int) ([]*domain.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, institution_id, user_id, title, phase, message, details_json, created_at
FROM compliance_analysis_failures
WHERE institution_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, institutionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Failure
	for rows.Next() {
		var f domain.Failure
		if err := rows.Scan(&f.ID, &f.InstitutionID, &f.UserID, &f.Title, &f.Phase, &f.Message, &f.DetailsJSON, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
