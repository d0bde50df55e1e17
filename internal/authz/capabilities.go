// Package authz resolves a caller identity into a capability descriptor.
// Components receive the descriptor instead of re-deriving role checks ad hoc.
package authz

// Role is the role string supplied by the external auth provider.
type Role string

const (
	// RoleReviewer can see all records but not rate them.
	RoleReviewer Role = "reviewer"
	// RoleRater can see all records, set statuses, and resolve duplicate alerts.
	RoleRater Role = "rater"
	// RoleSelfReviewer only sees records it saved itself.
	RoleSelfReviewer Role = "self_reviewer"
	// RoleSelfReviewerPlus sees its own records plus those of one configured delegate.
	RoleSelfReviewerPlus Role = "self_reviewer_plus"
	// RoleAdmin can additionally delete records.
	RoleAdmin Role = "admin"
)

// Identity is the caller as resolved by the external auth provider.
type Identity struct {
	Email string
	Role  Role
	// DelegateEmail is the colleague a self_reviewer_plus may review for.
	// Empty for every other role.
	DelegateEmail string
}

// Capabilities is the single per-caller descriptor injected into the query
// planner and the filter pipeline.
type Capabilities struct {
	CanViewAll bool
	CanRate    bool
	CanDelete  bool
	// Ownership restricts visible records to these savedBy identities.
	// Nil means unrestricted.
	Ownership []string
}

// Resolve derives the capability descriptor for an identity. Unknown roles
// get the most restricted view (own records only).
func Resolve(id Identity) Capabilities {
	switch id.Role {
	case RoleReviewer:
		return Capabilities{CanViewAll: true}
	case RoleRater:
		return Capabilities{CanViewAll: true, CanRate: true}
	case RoleAdmin:
		return Capabilities{CanViewAll: true, CanDelete: true}
	case RoleSelfReviewerPlus:
		owned := []string{id.Email}
		if id.DelegateEmail != "" {
			owned = append(owned, id.DelegateEmail)
		}
		return Capabilities{Ownership: owned}
	default:
		return Capabilities{Ownership: []string{id.Email}}
	}
}

// OwnsRestriction reports whether the descriptor limits visibility by creator.
func (c Capabilities) OwnsRestriction() bool { return len(c.Ownership) > 0 }
