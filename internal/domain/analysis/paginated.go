package analysis

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListFilter sudah melewati ScopeFilter
type ListFilter struct {
	InstitutionID *int64
	UserID        *int64
	Limit         int
	Offset        int
}

// Pagination metadata for history responses
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// Page represents a paginated response with data and metadata
type Page struct {
	Data       []*Record  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ClampPage applies defaults and bounds to raw limit/offset values.
// A nil pointer means the parameter was not supplied.
func ClampPage(limit, offset *int) (int, int) {
	l, o := DefaultLimit, 0
	if limit != nil {
		l = *limit
	}
	if offset != nil {
		o = *offset
	}
	if l < 0 {
		l = 0
	}
	if l > MaxLimit {
		l = MaxLimit
	}
	if o < 0 {
		o = 0
	}
	return l, o
}

func NewPagination(total int64, limit, offset int) Pagination {
	return Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		// tanpa offset+limit supaya offset besar tidak overflow
		HasMore: int64(offset) < total && int64(limit) < total-int64(offset),
	}
}
