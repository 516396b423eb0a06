package auth

import "github.com/hilthontt/encore/internal/domain"

type signUpRequest struct {
	FirstName string `json:"firstName" binding:"required,max=40"`
	LastName  string `json:"lastName" binding:"required,max=40"`
	Pin       string `json:"pin" binding:"required,numeric,min=4,max=8"`
}

type loginRequest struct {
	FirstName string `json:"firstName" binding:"required,max=40"`
	LastName  string `json:"lastName" binding:"required,max=40"`
	Pin       string `json:"pin" binding:"required,numeric,min=4,max=8"`
	Role      string `json:"role" binding:"omitempty,oneof=participant admin owner"`
}

type sessionResponse struct {
	Actor     domain.Actor `json:"actor"`
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
}
