package entity

// Role names carried in console tokens
const (
	RoleAdmin      = "admin"
	RoleDiagnostic = "diagnostic"
	RoleDoctor     = "doctor"
	RoleCompany    = "company"
)

// Scope is the identity a screen loads data for. It is handed to the loader
// explicitly instead of being read from ambient storage.
type Scope struct {
	ActorID      string `json:"actor_id"`
	ActorName    string `json:"actor_name,omitempty"`
	Role         string `json:"role"`
	DiagnosticID string `json:"diagnostic_id,omitempty"`
	DoctorID     string `json:"doctor_id,omitempty"`
	CompanyID    string `json:"company_id,omitempty"`
}

// Param returns the scope value bound to a resource placeholder name
func (s Scope) Param(name string) string {
	switch name {
	case "diagnosticId":
		return s.DiagnosticID
	case "doctorId":
		return s.DoctorID
	case "companyId":
		return s.CompanyID
	}
	return ""
}

// WithTargets points an admin scope at the diagnostic center, doctor or company
// picked for one screen. Other roles stay bound to the ids of their token.
func (s Scope) WithTargets(diagnosticID, doctorID, companyID string) Scope {
	if !s.IsAdmin() {
		return s
	}
	if diagnosticID != "" {
		s.DiagnosticID = diagnosticID
	}
	if doctorID != "" {
		s.DoctorID = doctorID
	}
	if companyID != "" {
		s.CompanyID = companyID
	}
	return s
}

// IsAdmin checks if the scope belongs to a platform admin
func (s Scope) IsAdmin() bool {
	return s.Role == RoleAdmin
}
