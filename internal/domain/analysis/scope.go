package analysis

// RoleAdmin together with InstitutionID 0 marks a super-admin.
const RoleAdmin = "admin"

// Principal resolved from the caller's credential. A nil *Principal is an
// unauthenticated (public-read) caller.
type Principal struct {
	UserID        int64
	InstitutionID int64
	Role          string
}

func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Role == RoleAdmin && p.InstitutionID == 0
}

// ScopeFilter returns the institution filter that is actually applied for p.
// nil means no institution filter.
func ScopeFilter(p *Principal, requested *int64) *int64 {
	if p == nil || p.IsSuperAdmin() {
		return requested
	}
	own := p.InstitutionID
	return &own
}

// CanView reports whether p may read a record owned by institutionID.
func CanView(p *Principal, institutionID int64) bool {
	scope := ScopeFilter(p, nil)
	return scope == nil || *scope == institutionID
}

// SubmitInstitution resolves the institution a submission is filed under.
func SubmitInstitution(p *Principal, requested int64) (int64, error) {
	if p == nil {
		return 0, Unauthorized("login diperlukan untuk mengirim dokumen")
	}
	if requested <= 0 {
		if p.IsSuperAdmin() {
			return 0, NewValidationError("id_instansi", "wajib diisi")
		}
		return p.InstitutionID, nil
	}
	if !p.IsSuperAdmin() && requested != p.InstitutionID {
		return 0, Forbidden("tidak berhak mengirim dokumen untuk instansi lain")
	}
	return requested, nil
}
