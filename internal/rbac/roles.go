package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAdmin  = "admin"
	RoleAgente = "agente"
	RoleLector = "lector"
)

func IsAdmin(role string) bool { return role == RoleAdmin }
