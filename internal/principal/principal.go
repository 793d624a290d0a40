// Package principal extracts the request-scoped identity from verified JWT
// claims. Handlers and services receive the caller explicitly instead of
// reading ambient cookie state.
package principal

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoPrincipal = errors.New("no authenticated principal in context")

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// FromContext builds the Principal from the JWT the auth middleware verified.
func FromContext(c *fiber.Ctx) (Principal, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return Principal{}, ErrNoPrincipal
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Principal{}, errors.New("missing sub claim")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return Principal{}, err
	}

	p := Principal{UserID: userID}
	if email, ok := claims["email"].(string); ok {
		p.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		p.Role = role
	}
	return p, nil
}

// UserID is a shortcut for handlers that only need the caller's id.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	p, err := FromContext(c)
	if err != nil {
		return uuid.Nil, err
	}
	return p.UserID, nil
}
