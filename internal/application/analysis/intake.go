package analysis

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bryanwahyu/compliance-gateway/internal/application"
	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

// DefaultMaxUploadBytes batas ukuran per dokumen
const DefaultMaxUploadBytes = 20 << 20

// Intake validates submissions and stages their documents in the blob store.
type Intake struct {
	Store    domain.BlobStore
	Clock    application.Clock
	MaxBytes int64
}

// Validate cek field wajib; tidak ada side effect
func (in *Intake) Validate(s domain.Submission) error {
	if strings.TrimSpace(s.Title) == "" {
		return domain.NewValidationError("judul_dok_kegiatan", "wajib diisi")
	}
	if strings.TrimSpace(s.Description) == "" {
		return domain.NewValidationError("deskripsi_dok_kegiatan", "wajib diisi")
	}
	if s.ActivityDocument == nil || len(s.ActivityDocument.Data) == 0 {
		return domain.NewValidationError("dok_kegiatan", "dokumen kegiatan wajib diunggah")
	}
	if s.IncludeFinancial && (s.FinancialDocument == nil || len(s.FinancialDocument.Data) == 0) {
		return domain.NewValidationError("dok_keuangan", "dokumen keuangan wajib diunggah jika include_dok_keuangan bernilai true")
	}
	limit := in.maxBytes()
	if s.ActivityDocument.Size() > limit {
		return domain.NewValidationError("dok_kegiatan", fmt.Sprintf("ukuran file melebihi %d byte", limit))
	}
	if s.IncludeFinancial && s.FinancialDocument.Size() > limit {
		return domain.NewValidationError("dok_keuangan", fmt.Sprintf("ukuran file melebihi %d byte", limit))
	}
	return nil
}

// Stage resolves the owning institution, validates, then writes at most two blobs.
func (in *Intake) Stage(ctx context.Context, p *domain.Principal, s domain.Submission) (*domain.StagedSubmission, error) {
	institution, err := domain.SubmitInstitution(p, s.InstitutionID)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(s); err != nil {
		return nil, err
	}

	now := in.Clock.Now()
	staged := &domain.StagedSubmission{
		InstitutionID:    institution,
		UserID:           p.UserID,
		Title:            strings.TrimSpace(s.Title),
		Description:      strings.TrimSpace(s.Description),
		IncludeFinancial: s.IncludeFinancial,
		StagedAt:         now,
	}

	activityKey := domain.StorageKey(institution, p.UserID, now, s.ActivityDocument.Filename)
	stored, err := in.put(ctx, activityKey, s.ActivityDocument)
	if err != nil {
		return nil, fmt.Errorf("store activity document: %w", err)
	}
	staged.Files = append(staged.Files, domain.StagedFile{
		Slot: domain.FileActivity, Document: s.ActivityDocument, StoredPath: stored,
	})

	// dokumen keuangan diabaikan kalau flag false
	if s.IncludeFinancial {
		financialKey := domain.StorageKey(institution, p.UserID, now, s.FinancialDocument.Filename)
		if financialKey == activityKey {
			financialKey = domain.StorageKey(institution, p.UserID, now, "keuangan_"+s.FinancialDocument.Filename)
		}
		stored, err := in.put(ctx, financialKey, s.FinancialDocument)
		if err != nil {
			return nil, fmt.Errorf("store financial document: %w", err)
		}
		staged.Files = append(staged.Files, domain.StagedFile{
			Slot: domain.FileFinancial, Document: s.FinancialDocument, StoredPath: stored,
		})
	}
	return staged, nil
}

func (in *Intake) put(ctx context.Context, key string, d *domain.Document) (string, error) {
	if d.ContentType == "" {
		d.ContentType = DetectContentType(d.Filename, d.Data)
	}
	return in.Store.Put(ctx, key, d.Data, d.ContentType)
}

func (in *Intake) maxBytes() int64 {
	if in.MaxBytes <= 0 {
		return DefaultMaxUploadBytes
	}
	return in.MaxBytes
}

// DetectContentType pakai ekstensi dulu, lalu sniffing isi file
func DetectContentType(filename string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
