package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS compliance_analyses (
  id                 BIGSERIAL PRIMARY KEY,
  engine_analysis_id VARCHAR(128) NULL,
  institution_id     BIGINT NOT NULL,
  user_id            BIGINT NOT NULL,
  title              VARCHAR(255) NOT NULL,
  description        TEXT NOT NULL,
  include_financial  BOOLEAN NOT NULL DEFAULT FALSE,
  activity_doc_path  VARCHAR(512) NOT NULL,
  financial_doc_path VARCHAR(512) NULL,
  risk_level         INT NOT NULL,
  compliance_score   DOUBLE PRECISION NOT NULL,
  status             VARCHAR(32) NOT NULL,
  is_fallback        BOOLEAN NOT NULL DEFAULT FALSE,
  created_at         TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_institution_created ON compliance_analyses (institution_id, created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_user_created ON compliance_analyses (user_id, created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS compliance_analysis_files (
  id            BIGSERIAL PRIMARY KEY,
  analysis_id   BIGINT NOT NULL REFERENCES compliance_analyses(id) ON DELETE CASCADE,
  file_type     VARCHAR(32) NOT NULL,
  original_name VARCHAR(255) NOT NULL,
  stored_path   VARCHAR(512) NOT NULL,
  size_bytes    BIGINT NOT NULL,
  mime_type     VARCHAR(128) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS compliance_indicators (
  id              BIGSERIAL PRIMARY KEY,
  analysis_id     BIGINT NOT NULL REFERENCES compliance_analyses(id) ON DELETE CASCADE,
  indicator_index INT NOT NULL,
  name            VARCHAR(255) NOT NULL,
  classification  INT NOT NULL,
  detail          TEXT NOT NULL,
  rationale       TEXT NOT NULL,
  score           DOUBLE PRECISION NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS compliance_recommendations (
  id           BIGSERIAL PRIMARY KEY,
  analysis_id  BIGINT NOT NULL REFERENCES compliance_analyses(id) ON DELETE CASCADE,
  indicator_id INT NOT NULL,
  title        VARCHAR(255) NOT NULL,
  description  TEXT NOT NULL,
  steps_json   JSONB NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS compliance_regulations (
  id          BIGSERIAL PRIMARY KEY,
  analysis_id BIGINT NOT NULL REFERENCES compliance_analyses(id) ON DELETE CASCADE,
  title       VARCHAR(512) NOT NULL,
  institution VARCHAR(255) NOT NULL,
  alignment   DOUBLE PRECISION NOT NULL,
  url         VARCHAR(1024) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS compliance_analysis_failures (
  id             BIGSERIAL PRIMARY KEY,
  institution_id BIGINT NOT NULL,
  user_id        BIGINT NOT NULL,
  title          VARCHAR(255) NOT NULL,
  phase          VARCHAR(32) NOT NULL,
  message        TEXT NOT NULL,
  details_json   JSONB NOT NULL,
  created_at     TIMESTAMPTZ NOT NULL
)`,
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate postgres step %d: %w", i+1, err)
		}
	}
	return nil
}
