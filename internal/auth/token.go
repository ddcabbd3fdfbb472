package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignToken issues a bearer token for a resolved user context. The payload
// carries the full permission snapshot for boundary clients; the resolver
// itself only trusts the id claim and re-reads permissions server-side.
func SignToken(uc *UserContext, secret, method string, ttl time.Duration) (string, error) {
	signer := jwt.GetSigningMethod(method)
	if signer == nil {
		return "", fmt.Errorf("unknown signing method %q", method)
	}

	now := time.Now()

	claims := jwt.MapClaims{
		"id":                uc.UserID,
		"username":          uc.Username,
		"group_id":          uc.GroupID,
		"group_name":        uc.GroupName,
		"main_permissions":  uc.MainPermissions,
		"permitted_stores":  uc.PermittedStores,
		"store_permissions": uc.StorePermissions,
		"iat":               now.Unix(),
		"exp":               now.Add(ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(signer, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return token, nil
}
