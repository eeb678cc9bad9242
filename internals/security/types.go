package security

import "github.com/golang-jwt/jwt/v5"

const RoleAdmin = "admin"

// RequestClaims carries the caller in the registered "sub" claim.
type RequestClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
