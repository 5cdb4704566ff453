package auth

import (
	"encoding/json"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/optinhub/optin-manager/internal/domain"
)

// Payload is the decoded claim set of a bearer token.
type Payload map[string]any

var (
	segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())
	urlAlphabet   = strings.NewReplacer("+", "-", "/", "_")
)

// ParseToken decodes the payload segment of token without checking its signature.
// It never fails loudly: anything that is not a base64url JSON object yields nil.
func ParseToken(token string) Payload {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil
	}

	raw, err := segmentParser.DecodeSegment(urlAlphabet.Replace(parts[1]))
	if err != nil {
		return nil
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload
}

// Role returns the scope claim, or "" when it is missing or not a string.
func (p Payload) Role() domain.Role {
	scope, _ := p["scope"].(string)
	return domain.Role(scope)
}

// RoleFromToken returns the scope of token, or "" when it cannot be parsed.
func RoleFromToken(token string) domain.Role {
	return ParseToken(token).Role()
}

// IsAdmin reports whether token carries the admin scope.
func IsAdmin(token string) bool {
	return RoleFromToken(token) == domain.RoleAdmin
}

// IsSupport reports whether token carries the support scope.
func IsSupport(token string) bool {
	return RoleFromToken(token) == domain.RoleSupport
}

// IsAuthenticated reports whether token is unexpired and carries a scope.
func IsAuthenticated(token string) bool {
	return IsAuthenticatedAt(token, time.Now())
}

// IsAuthenticatedAt is IsAuthenticated evaluated at now.
// A token without exp never expires; a non-numeric exp counts as expired.
// Any truthy scope authenticates, including one that names no known role.
func IsAuthenticatedAt(token string, now time.Time) bool {
	payload := ParseToken(token)
	if payload == nil {
		return false
	}

	if raw, ok := payload["exp"]; ok {
		exp, ok := raw.(float64)
		if !ok || epochSeconds(now) >= exp {
			return false
		}
	}
	return truthy(payload["scope"])
}

// truthy follows JSON truthiness: absent, null, false, 0 and "" are false.
// Objects and arrays are true even when empty.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
