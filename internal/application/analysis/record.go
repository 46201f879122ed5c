package analysis

import (
	"time"

	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/compliance-gateway/internal/domain/engine"
)

// BuildRecord maps a staged submission and a normalized engine result into
// the aggregate that the repository persists in one transaction.
func BuildRecord(s *domain.StagedSubmission, n *engine.Normalized, fallback bool, now time.Time) *domain.Record {
	rec := &domain.Record{
		InstitutionID:    s.InstitutionID,
		UserID:           s.UserID,
		Title:            s.Title,
		Description:      s.Description,
		IncludeFinancial: s.IncludeFinancial,
		RiskLevel:        n.RiskLevel,
		ComplianceScore:  n.ComplianceScore,
		Status:           domain.StatusSuccess,
		Fallback:         fallback || n.Fallback,
		CreatedAt:        now,
		Indicators:       n.Indicators,
		Recommendations:  n.Recommendations,
		Regulations:      n.Regulations,
	}
	if n.EngineAnalysisID != "" {
		id := n.EngineAnalysisID
		rec.EngineAnalysisID = &id
	}

	for _, f := range s.Files {
		switch f.Slot {
		case domain.FileActivity:
			rec.ActivityDocPath = f.StoredPath
		case domain.FileFinancial:
			p := f.StoredPath
			rec.FinancialDocPath = &p
		}
		rec.Files = append(rec.Files, domain.File{
			Type:         domain.ClassifyFile(f.Slot, f.Document.Filename, f.StoredPath),
			OriginalName: f.Document.Filename,
			StoredPath:   f.StoredPath,
			SizeBytes:    f.Document.Size(),
			MimeType:     f.Document.ContentType,
		})
	}
	return rec
}
