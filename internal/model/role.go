package model

// Role gates which routes an account may reach.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSeller
}

// Label is the pt-BR display name.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleSeller:
		return "Vendedor"
	}
	return string(r)
}

// Privileges returns the privilege codes granted to the role.
func (r Role) Privileges() []string {
	var codes []string
	for _, p := range DefaultPrivileges {
		if r == RoleAdmin || !p.AdminOnly {
			codes = append(codes, p.Code)
		}
	}
	return codes
}

// Can reports whether the role holds a privilege code.
func (r Role) Can(code string) bool {
	for _, p := range DefaultPrivileges {
		if p.Code == code {
			return r == RoleAdmin || (r == RoleSeller && !p.AdminOnly)
		}
	}
	return false
}
