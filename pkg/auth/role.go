package auth

import "strings"

// Well-known role ids. The id doubles as the role name and the rank key.
const (
	RoleAnonymous  = "ANONYMOUS"
	RoleUser       = "USER"
	RoleVip1       = "VIP_1"
	RoleVip2       = "VIP_2"
	RoleVip3       = "VIP_3"
	RoleVip4       = "VIP_4"
	RoleVip5       = "VIP_5"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

var roleRanks = map[string]int{
	RoleAnonymous:  0,
	RoleUser:       1,
	RoleVip1:       2,
	RoleVip2:       3,
	RoleVip3:       4,
	RoleVip4:       5,
	RoleVip5:       6,
	RoleAdmin:      9998,
	RoleSuperAdmin: 9999,
}

// Rank returns the privilege rank of a role id. Unknown roles rank as
// ANONYMOUS.
func Rank(roleID string) int {
	return roleRanks[roleID]
}

// Claim is a caller's resolved role claim: the single assigned role id plus
// the permission patterns of that role. A nil or empty claim is anonymous.
type Claim struct {
	RoleID      string
	Permissions []string
}

func NewClaim(roleID string, permissions []string) *Claim {
	return &Claim{RoleID: roleID, Permissions: permissions}
}

func Anonymous() *Claim {
	return &Claim{}
}

func (c *Claim) roleID() string {
	if c == nil || c.RoleID == "" {
		return RoleAnonymous
	}
	return c.RoleID
}

func (c *Claim) AtLeast(roleID string) bool {
	return Rank(c.roleID()) >= Rank(roleID)
}

func (c *Claim) LowerThan(roleID string) bool {
	return Rank(c.roleID()) < Rank(roleID)
}

// HasRole is an exact match against the caller's assigned role id.
func (c *Claim) HasRole(roleID string) bool {
	if c == nil || c.RoleID == "" || roleID == "" {
		return false
	}
	return c.RoleID == roleID
}

func (c *Claim) HasAnyRole(roleIDs ...string) bool {
	for _, id := range roleIDs {
		if c.HasRole(id) {
			return true
		}
	}
	return false
}

// MatchPermission reports whether a held permission pattern covers the
// requested permission. Grammar: "*" covers everything, a trailing "*" is a
// prefix wildcard ("USER_*" covers "USER_API_ADD"), anything else is an
// exact match.
func MatchPermission(pattern, permission string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(permission, prefix)
	}
	return pattern == permission
}

func (c *Claim) HasPermission(permission string) bool {
	if c == nil || c.RoleID == "" || permission == "" {
		return false
	}
	for _, pattern := range c.Permissions {
		if MatchPermission(pattern, permission) {
			return true
		}
	}
	return false
}

func (c *Claim) HasAnyPermission(permissions ...string) bool {
	for _, p := range permissions {
		if c.HasPermission(p) {
			return true
		}
	}
	return false
}

func (c *Claim) HasAllPermissions(permissions ...string) bool {
	for _, p := range permissions {
		if !c.HasPermission(p) {
			return false
		}
	}
	return true
}

// CanReplace governs whether a purchase may change the caller's current role.
// Admins are never downgraded by a purchase; everyone else may only move to a
// strictly higher-ranked role (or re-buy their own).
func (c *Claim) CanReplace(roleID string) bool {
	if c == nil || c.RoleID == "" {
		return true
	}
	if c.RoleID == roleID {
		return true
	}
	if c.RoleID == RoleAdmin || c.RoleID == RoleSuperAdmin {
		return true
	}
	return c.LowerThan(roleID)
}
