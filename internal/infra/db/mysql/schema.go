package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS compliance_analyses (
  id                 BIGINT AUTO_INCREMENT PRIMARY KEY,
  engine_analysis_id VARCHAR(128) NULL,
  institution_id     BIGINT NOT NULL,
  user_id            BIGINT NOT NULL,
  title              VARCHAR(255) NOT NULL,
  description        TEXT NOT NULL,
  include_financial  TINYINT(1) NOT NULL DEFAULT 0,
  activity_doc_path  VARCHAR(512) NOT NULL,
  financial_doc_path VARCHAR(512) NULL,
  risk_level         INT NOT NULL,
  compliance_score   DOUBLE NOT NULL,
  status             VARCHAR(32) NOT NULL,
  is_fallback        TINYINT(1) NOT NULL DEFAULT 0,
  created_at         DATETIME(3) NOT NULL,
  KEY idx_analyses_institution_created (institution_id, created_at, id),
  KEY idx_analyses_user_created (user_id, created_at, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS compliance_analysis_files (
  id            BIGINT AUTO_INCREMENT PRIMARY KEY,
  analysis_id   BIGINT NOT NULL,
  file_type     VARCHAR(32) NOT NULL,
  original_name VARCHAR(255) NOT NULL,
  stored_path   VARCHAR(512) NOT NULL,
  size_bytes    BIGINT NOT NULL,
  mime_type     VARCHAR(128) NOT NULL,
  CONSTRAINT fk_files_analysis FOREIGN KEY (analysis_id) REFERENCES compliance_analyses(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS compliance_indicators (
  id              BIGINT AUTO_INCREMENT PRIMARY KEY,
  analysis_id     BIGINT NOT NULL,
  indicator_index INT NOT NULL,
  name            VARCHAR(255) NOT NULL,
  classification  INT NOT NULL,
  detail          TEXT NOT NULL,
  rationale       TEXT NOT NULL,
  score           DOUBLE NOT NULL,
  CONSTRAINT fk_indicators_analysis FOREIGN KEY (analysis_id) REFERENCES compliance_analyses(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS compliance_recommendations (
  id           BIGINT AUTO_INCREMENT PRIMARY KEY,
  analysis_id  BIGINT NOT NULL,
  indicator_id INT NOT NULL,
  title        VARCHAR(255) NOT NULL,
  description  TEXT NOT NULL,
  steps_json   JSON NOT NULL,
  CONSTRAINT fk_recommendations_analysis FOREIGN KEY (analysis_id) REFERENCES compliance_analyses(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS compliance_regulations (
  id          BIGINT AUTO_INCREMENT PRIMARY KEY,
  analysis_id BIGINT NOT NULL,
  title       VARCHAR(512) NOT NULL,
  institution VARCHAR(255) NOT NULL,
  alignment   DOUBLE NOT NULL,
  url         VARCHAR(1024) NOT NULL,
  CONSTRAINT fk_regulations_analysis FOREIGN KEY (analysis_id) REFERENCES compliance_analyses(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS compliance_analysis_failures (
  id             BIGINT AUTO_INCREMENT PRIMARY KEY,
  institution_id BIGINT NOT NULL,
  user_id        BIGINT NOT NULL,
  title          VARCHAR(255) NOT NULL,
  phase          VARCHAR(32) NOT NULL,
  message        TEXT NOT NULL,
  details_json   JSON NOT NULL,
  created_at     DATETIME(3) NOT NULL,
  KEY idx_failures_institution_created (institution_id, created_at, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate buat tabel kalau belum ada. Aman dijalankan berulang.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate mysql step %d: %w", i+1, err)
		}
	}
	return nil
}
