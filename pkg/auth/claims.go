package auth

import (
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Actor is the resolved identity every domain operation runs as. Token
// issuance belongs to the identity service; this package only verifies.
type Actor struct {
	UserID     uuid.UUID
	Privileged bool
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.ActorRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	Role   enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts verified claims into the request actor.
func (c AccessTokenClaims) Actor() Actor {
	return Actor{
		UserID:     c.UserID,
		Privileged: c.Role == enums.ActorRoleAdmin,
	}
}
