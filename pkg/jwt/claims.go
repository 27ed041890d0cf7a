package jwt

import "github.com/golang-jwt/jwt/v5"

// OperatorClaims are the claims carried by operator tokens issued by the
// identity collaborator.
type OperatorClaims struct {
	jwt.RegisteredClaims
	Tournament string `json:"tournament"`
	Role       string `json:"role"`
}

// Role is an operator role as decided by the identity layer. The engine does
// not re-derive permissions; it only gates mutating endpoints on roles the
// identity layer already granted.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleCoach  Role = "coach"
	RoleAdmin  Role = "admin"
)

// CanManageShootOffs reports whether the role may create and operate
// shoot-offs.
func (r Role) CanManageShootOffs() bool {
	return r == RoleCoach || r == RoleAdmin
}
