package analysis

import (
	"time"
)

// RecordID tipe untuk AnalysisRecord
type RecordID int64

// Status enum. Saat ini hanya ada satu state terminal.
type Status string

const (
	StatusSuccess Status = "success"
)

// FileType enum untuk AnalysisFile
type FileType string

const (
	FileActivity  FileType = "activity_document"
	FileFinancial FileType = "financial_document"
)

// Classification code indikator (ordinal)
type Classification int

const (
	ClassFullyCompliant     Classification = 1
	ClassPartiallyCompliant Classification = 2
	ClassNonCompliant       Classification = 3
)

// Indicator taxonomy emitted by the engine.
var IndicatorTaxonomy = []string{
	"Kepatuhan Prosedural",
	"Efisiensi Anggaran",
	"Transparansi",
	"Kepatuhan Regulasi",
	"Etika dan Anti-Korupsi",
	"Pengelolaan Sumber Daya",
	"Evaluasi dan Tindak Lanjut",
}

// Indicator value object, dimiliki oleh Record
type Indicator struct {
	ID             int64          `json:"id"`
	Index          int            `json:"index"`
	Name           string         `json:"name"`
	Classification Classification `json:"classification"`
	Detail         string         `json:"detail"`
	Rationale      string         `json:"rationale"`
	Score          float64        `json:"score"`
}

// Recommendation terkait satu indikator lewat IndicatorID (tanpa FK)
type Recommendation struct {
	ID          int64    `json:"id"`
	IndicatorID int      `json:"indicator_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

// Regulation citation
type Regulation struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Institution string  `json:"institution"`
	Alignment   float64 `json:"alignment"`
	URL         string  `json:"url"`
}

// File record untuk upload yang sudah disimpan
type File struct {
	ID           int64    `json:"id"`
	Type         FileType `json:"file_type"`
	OriginalName string   `json:"original_name"`
	StoredPath   string   `json:"stored_path"`
	SizeBytes    int64    `json:"size_bytes"`
	MimeType     string   `json:"mime_type"`
}

// Aggregate Root: Record
type Record struct {
	ID               RecordID         `json:"id"`
	EngineAnalysisID *string          `json:"engine_analysis_id"`
	InstitutionID    int64            `json:"institution_id"`
	UserID           int64            `json:"user_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	IncludeFinancial bool             `json:"include_financial"`
	ActivityDocPath  string           `json:"activity_doc_path"`
	FinancialDocPath *string          `json:"financial_doc_path"`
	RiskLevel        int              `json:"risk_level"`
	ComplianceScore  float64          `json:"compliance_score"`
	Status           Status           `json:"status"`
	Fallback         bool             `json:"is_fallback"`
	CreatedAt        time.Time        `json:"created_at"`
	Files            []File           `json:"files"`
	Indicators       []Indicator      `json:"indicators"`
	Recommendations  []Recommendation `json:"recommendations"`
	Regulations      []Regulation     `json:"regulations"`
}
