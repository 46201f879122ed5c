package analysis

import "time"

// Document is an uploaded blob as received from the client.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (d *Document) Size() int64 {
	if d == nil {
		return 0
	}
	return int64(len(d.Data))
}

// Submission input dari form multipart
type Submission struct {
	InstitutionID     int64
	Title             string
	Description       string
	IncludeFinancial  bool
	ActivityDocument  *Document
	FinancialDocument *Document
}

// StagedFile is a document already written to the blob store.
type StagedFile struct {
	Slot       FileType
	Document   *Document
	StoredPath string
}

// StagedSubmission hasil Intake, siap diteruskan ke engine
type StagedSubmission struct {
	InstitutionID    int64
	UserID           int64
	Title            string
	Description      string
	IncludeFinancial bool
	Files            []StagedFile
	StagedAt         time.Time
}

func (s *StagedSubmission) File(slot FileType) *StagedFile {
	for i := range s.Files {
		if s.Files[i].Slot == slot {
			return &s.Files[i]
		}
	}
	return nil
}

// EngineRequest untuk Engine
type EngineRequest struct {
	InstitutionID     int64
	Title             string
	Description       string
	IncludeFinancial  bool
	ActivityDocument  *Document
	FinancialDocument *Document
}

// EngineResult hasil dari Engine. Raw disimpan apa adanya.
type EngineResult struct {
	Raw        []byte
	StatusCode int
	Fallback   bool
}

// Request builds the forwarding request for the engine.
func (s *StagedSubmission) Request() EngineRequest {
	req := EngineRequest{
		InstitutionID:    s.InstitutionID,
		Title:            s.Title,
		Description:      s.Description,
		IncludeFinancial: s.IncludeFinancial,
	}
	if f := s.File(FileActivity); f != nil {
		req.ActivityDocument = f.Document
	}
	if f := s.File(FileFinancial); f != nil {
		req.FinancialDocument = f.Document
	}
	return req
}
