package types

import "github.com/golang-jwt/jwt/v5"

// Claims identifies the authenticated employee
type Claims struct {
	EmployeeID uint   `json:"employee_id"`
	Type       string `json:"type"`
	jwt.RegisteredClaims
}
