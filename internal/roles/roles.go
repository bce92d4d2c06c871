package roles

import "strings"

// Role is the access level carried in the identity provider's custom claim.
type Role string

const (
	Public  Role = "public"
	Officer Role = "officer"
	Master  Role = "master"
)

// AdminRoles is the allow-list used by most admin surfaces.
var AdminRoles = []Role{Master, Officer}

// FromClaims resolves the role claim from a raw claims map. Any missing,
// non-string or unknown value resolves to Public so a broken token can never
// grant access.
func FromClaims(claims map[string]interface{}) Role {
	if claims == nil {
		return Public
	}
	raw, ok := claims["role"].(string)
	if !ok {
		return Public
	}
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case Master:
		return Master
	case Officer:
		return Officer
	default:
		return Public
	}
}

// Parse normalizes a role string from config or CLI input.
// Returns Public for anything it does not recognize.
func Parse(s string) Role {
	return FromClaims(map[string]interface{}{"role": s})
}

// CanAdmin reports whether the role may read and write admin content.
func (r Role) CanAdmin() bool {
	return r == Master || r == Officer
}

// IsMaster reports whether the role may use master-only screens.
func (r Role) IsMaster() bool {
	return r == Master
}

func (r Role) String() string { return string(r) }
