// Package testhelpers provides utilities for testing ekaya-console components.
package testhelpers

import (
	"encoding/base64"
	"fmt"
	"time"
)

// GenerateTestJWT creates an unsigned test JWT (alg: none) for sub.
// A zero exp omits the exp claim. The console never verifies signatures,
// it only reads the expiry, so the structure is all that matters.
func GenerateTestJWT(sub string, exp time.Time) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	payload := fmt.Sprintf(`{"sub":"%s"`, sub)
	if !exp.IsZero() {
		payload += fmt.Sprintf(`,"exp":%d`, exp.Unix())
	}
	payload += "}"

	encodedPayload := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return fmt.Sprintf("%s.%s.", header, encodedPayload)
}
