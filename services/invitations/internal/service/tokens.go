package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// tokenBytes encodes to domain.TokenLength characters of unpadded base64url.
const tokenBytes = 24

// GenerateToken returns a 32 character URL-safe token from crypto/rand.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func randomSuffix(n int) (string, error) {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf)[:n], nil
}

// GuestLink is the personal URL a host shares with a guest.
func GuestLink(baseURL string, invitationID int64, token string) string {
	return fmt.Sprintf("%s/invite/%d/%s", baseURL, invitationID, token)
}
