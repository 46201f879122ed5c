package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

const (
	insertAnalysisQuery = `
INSERT INTO compliance_analyses
(engine_analysis_id, institution_id, user_id, title, description, include_financial,
 activity_doc_path, financial_doc_path, risk_level, compliance_score, status, is_fallback, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
RETURNING id`

	insertFileQuery = `
INSERT INTO compliance_analysis_files
(analysis_id, file_type, original_name, stored_path, size_bytes, mime_type)
VALUES ($1,$2,$3,$4,$5,$6)`

	insertIndicatorQuery = `
INSERT INTO compliance_indicators
(analysis_id, indicator_index, name, classification, detail, rationale, score)
VALUES ($1,$2,$3,$4,$5,$6,$7)`

	insertRecommendationQuery = `
INSERT INTO compliance_recommendations
(analysis_id, indicator_id, title, description, steps_json)
VALUES ($1,$2,$3,$4,$5)`

	insertRegulationQuery = `
INSERT INTO compliance_regulations
(analysis_id, title, institution, alignment, url)
VALUES ($1,$2,$3,$4,$5)`

	analysisColumns = `id, engine_analysis_id, institution_id, user_id, title, description, include_financial,
       activity_doc_path, financial_doc_path, risk_level, compliance_score, status, is_fallback, created_at`
)

// Create insert header (RETURNING id) lalu child, satu transaksi
func (r *AnalysisRepository) Create(ctx context.Context, rec *domain.Record) (id domain.RecordID, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	var newID int64
	err = tx.QueryRowContext(ctx, insertAnalysisQuery,
		nullString(rec.EngineAnalysisID), rec.InstitutionID, rec.UserID, rec.Title, rec.Description, rec.IncludeFinancial,
		rec.ActivityDocPath, nullString(rec.FinancialDocPath), rec.RiskLevel, rec.ComplianceScore,
		stringOrDash(string(rec.Status)), rec.Fallback, created,
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}

	for _, f := range rec.Files {
		if _, err = tx.ExecContext(ctx, insertFileQuery,
			newID, string(f.Type), f.OriginalName, f.StoredPath, f.SizeBytes, f.MimeType); err != nil {
			return 0, fmt.Errorf("insert file: %w", err)
		}
	}
	for _, in := range rec.Indicators {
		if _, err = tx.ExecContext(ctx, insertIndicatorQuery,
			newID, in.Index, in.Name, int(in.Classification), in.Detail, in.Rationale, in.Score); err != nil {
			return 0, fmt.Errorf("insert indicator: %w", err)
		}
	}
	for _, rc := range rec.Recommendations {
		steps := rc.Steps
		if steps == nil {
			steps = []string{}
		}
		var b []byte
		if b, err = json.Marshal(steps); err != nil {
			return 0, fmt.Errorf("encode steps: %w", err)
		}
		if _, err = tx.ExecContext(ctx, insertRecommendationQuery,
			newID, rc.IndicatorID, rc.Title, rc.Description, string(b)); err != nil {
			return 0, fmt.Errorf("insert recommendation: %w", err)
		}
	}
	for _, rg := range rec.Regulations {
		if _, err = tx.ExecContext(ctx, insertRegulationQuery,
			newID, rg.Title, rg.Institution, rg.Alignment, rg.URL); err != nil {
			return 0, fmt.Errorf("insert regulation: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit analysis: %w", err)
	}
	return domain.RecordID(newID), nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	q := `SELECT ` + analysisColumns + `
FROM compliance_analyses
WHERE id=$1
LIMIT 1;`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	if err := r.loadChildren(ctx, []*domain.Record{rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *AnalysisRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.Record, int64, error) {
	var conds []string
	var args []any
	if f.InstitutionID != nil {
		args = append(args, *f.InstitutionID)
		conds = append(conds, fmt.Sprintf("institution_id = $%d", len(args)))
	}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM compliance_analyses"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting analyses: %w", err)
	}

	q := fmt.Sprintf(`SELECT %s
FROM compliance_analyses%s
ORDER BY created_at DESC, id DESC
LIMIT $%d OFFSET $%d`, analysisColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, q, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	out := []*domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating rows: %w", err)
	}
	if err := r.loadChildren(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// loadChildren pakai = ANY($1) supaya satu query per tabel child
func (r *AnalysisRepository) loadChildren(ctx context.Context, recs []*domain.Record) error {
	if len(recs) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Record, len(recs))
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		rec.Files = []domain.File{}
		rec.Indicators = []domain.Indicator{}
		rec.Recommendations = []domain.Recommendation{}
		rec.Regulations = []domain.Regulation{}
		byID[int64(rec.ID)] = rec
		ids = append(ids, int64(rec.ID))
	}
	arg := pq.Array(ids)

	err := r.eachRow(ctx, `SELECT id, analysis_id, file_type, original_name, stored_path, size_bytes, mime_type
FROM compliance_analysis_files WHERE analysis_id = ANY($1) ORDER BY id`, arg, func(rows *sql.Rows) error {
		var f domain.File
		var aid int64
		var ft string
		if err := rows.Scan(&f.ID, &aid, &ft, &f.OriginalName, &f.StoredPath, &f.SizeBytes, &f.MimeType); err != nil {
			return err
		}
		f.Type = domain.FileType(ft)
		if rec := byID[aid]; rec != nil {
			rec.Files = append(rec.Files, f)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading files: %w", err)
	}

	err = r.eachRow(ctx, `SELECT id, analysis_id, indicator_index, name, classification, detail, rationale, score
FROM compliance_indicators WHERE analysis_id = ANY($1) ORDER BY id`, arg, func(rows *sql.Rows) error {
		var ind domain.Indicator
		var aid int64
		var cls int
		if err := rows.Scan(&ind.ID, &aid, &ind.Index, &ind.Name, &cls, &ind.Detail, &ind.Rationale, &ind.Score); err != nil {
			return err
		}
		ind.Classification = domain.Classification(cls)
		if rec := byID[aid]; rec != nil {
			rec.Indicators = append(rec.Indicators, ind)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading indicators: %w", err)
	}

	err = r.eachRow(ctx, `SELECT id, analysis_id, indicator_id, title, description, steps_json
FROM compliance_recommendations WHERE analysis_id = ANY($1) ORDER BY id`, arg, func(rows *sql.Rows) error {
		var rc domain.Recommendation
		var aid int64
		var steps sql.NullString
		if err := rows.Scan(&rc.ID, &aid, &rc.IndicatorID, &rc.Title, &rc.Description, &steps); err != nil {
			return err
		}
		rc.Steps = unmarshalSteps(steps.String)
		if rec := byID[aid]; rec != nil {
			rec.Recommendations = append(rec.Recommendations, rc)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading recommendations: %w", err)
	}

	err = r.eachRow(ctx, `SELECT id, analysis_id, title, institution, alignment, url
FROM compliance_regulations WHERE analysis_id = ANY($1) ORDER BY id`, arg, func(rows *sql.Rows) error {
		var rg domain.Regulation
		var aid int64
		if err := rows.Scan(&rg.ID, &aid, &rg.Title, &rg.Institution, &rg.Alignment, &rg.URL); err != nil {
			return err
		}
		if rec := byID[aid]; rec != nil {
			rec.Regulations = append(rec.Regulations, rg)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading regulations: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) eachRow(ctx context.Context, q string, arg any, fn func(*sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var engineID, finPath sql.NullString
	var status string
	if err := row.Scan(
		&rec.ID, &engineID, &rec.InstitutionID, &rec.UserID, &rec.Title, &rec.Description, &rec.IncludeFinancial,
		&rec.ActivityDocPath, &finPath, &rec.RiskLevel, &rec.ComplianceScore, &status, &rec.Fallback, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.Status = domain.Status(status)
	if engineID.Valid {
		rec.EngineAnalysisID = &engineID.String
	}
	if finPath.Valid {
		rec.FinancialDocPath = &finPath.String
	}
	return &rec, nil
}

type FailureRepository struct{ db *sql.DB }

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

func (r *FailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO compliance_analysis_failures
  (institution_id, user_id, title, phase, message, details_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`
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
