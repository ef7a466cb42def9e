package model

// Role is the caller's subscription tier.
type Role string

const (
	RoleVisitor Role = "VISITOR"
	RolePremium Role = "PREMIUM"
	RolePro     Role = "PRO"
)

// EntitlementFlags gate which derived fields are populated in the response.
type EntitlementFlags struct {
	Premium   bool `json:"premium"`
	Analytics bool `json:"analytics"`
}

// Entitlements carries the resolved role and its flags.
type Entitlements struct {
	Role  Role             `json:"role"`
	Flags EntitlementFlags `json:"flags"`
}

// EntitlementsFor maps a role to its flags.
func EntitlementsFor(role Role) Entitlements {
	switch role {
	case RolePro:
		return Entitlements{Role: role, Flags: EntitlementFlags{Premium: true, Analytics: true}}
	case RolePremium:
		return Entitlements{Role: role, Flags: EntitlementFlags{Premium: true}}
	default:
		return Entitlements{Role: RoleVisitor}
	}
}
