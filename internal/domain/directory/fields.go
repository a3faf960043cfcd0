package directory

import (
	"strings"

	"hcm/internal/domain/identity"
)

// RedactFor trims fields the viewer may not see. HR Admins and the
// employee themself see everything; anyone else sees a masked IBAN.
func RedactFor(emp *Employee, viewer identity.UserContext) {
	if emp == nil || CanSeeSensitive(*emp, viewer) {
		return
	}
	emp.IBAN = MaskIBAN(emp.IBAN)
	emp.IdentityAccountID = ""
}

func CanSeeSensitive(emp Employee, viewer identity.UserContext) bool {
	if viewer.Role == identity.RoleHRAdmin {
		return true
	}
	return viewer.Email != "" && strings.EqualFold(viewer.Email, emp.Email)
}

func MaskIBAN(iban string) string {
	if iban == "" {
		return ""
	}
	if len(iban) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(iban)-4) + iban[len(iban)-4:]
}
