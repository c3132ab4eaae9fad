package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"realtime-lab/domain"
	apperrors "realtime-lab/errors"
)

// CustomClaims defines the structure of the data stored inside the JWT.
// The realtime layer trusts these claims as-is: the issuing side already
// verified the identity.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a specific user. Issuance
// belongs to the account system; this helper exists for the test client
// and the test suites.
func GenerateToken(secret []byte, userID domain.UserID, roles []domain.Role,
	tokenDuration time.Duration) (string, error) {
	expirationTime := time.Now().Add(tokenDuration)

	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, string(role))
	}

	claims := &CustomClaims{
		UserID: string(userID),
		Roles:  roleNames,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "realtime-lab",
		},
	}

	// HS256 (HMAC with SHA256), signed with the shared secret.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates the signature and expiration of a
// JWT string, returning the identity to hand to the registry.
func ValidateToken(secret []byte, tokenString string) (domain.UserID, []domain.Role, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", nil, apperrors.ErrInvalidToken
	}
	if strings.Contains(claims.UserID, ":") {
		// The colon is reserved as the key separator in storage.
		return "", nil, fmt.Errorf("%w: user id %q", apperrors.ErrInvalidToken, claims.UserID)
	}

	roles := make([]domain.Role, 0, len(claims.Roles))
	for _, role := range claims.Roles {
		roles = append(roles, domain.Role(role))
	}
	return domain.UserID(claims.UserID), roles, nil
}
