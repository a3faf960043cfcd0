package identity

import "context"

// Policy answers permission checks from the static role table.
type Policy struct {
	grants map[string]map[string]struct{}
}

func NewPolicy() *Policy {
	grants := make(map[string]map[string]struct{}, len(RolePermissions))
	for role, perms := range RolePermissions {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		grants[role] = set
	}
	return &Policy{grants: grants}
}

func (p *Policy) HasPermission(_ context.Context, role, permission string) (bool, error) {
	perms, ok := p.grants[role]
	if !ok {
		return false, nil
	}
	_, ok = perms[permission]
	return ok, nil
}
