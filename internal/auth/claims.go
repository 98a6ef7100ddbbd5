package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// Account is the tenant name; scope fan-out for org accounts happens
// server-side, tokens never carry member lists.
type Claims struct {
	jwt.RegisteredClaims

	Account   string    `json:"account"`
	TokenType TokenType `json:"token_type"`
}
