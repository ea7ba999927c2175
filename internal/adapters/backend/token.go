package backend

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IsExpired reports whether a bearer token should no longer be used.
// Only the payload segment is decoded; the header and signature are not
// looked at. Anything unreadable, including a missing exp, counts as expired.
func IsExpired(token string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return true
	}
	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return true
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Unix()*1000 <= now.UnixMilli()
}
