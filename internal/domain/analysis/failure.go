package analysis

import "time"

// Failure phases
const (
	PhaseEngine    = "engine"
	PhaseNormalize = "normalize"
	PhasePersist   = "persist"
)

// Failure represents a persisted engine/payload failure entry
type Failure struct {
	ID            int64     `json:"id"`
	InstitutionID int64     `json:"institution_id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	Phase         string    `json:"phase"`
	Message       string    `json:"message"`
	DetailsJSON   string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt     time.Time `json:"created_at"`
}
