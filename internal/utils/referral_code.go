package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateReferralCode returns a random 10 character uppercase hex code.
func GenerateReferralCode() (string, error) {
	bytes := make([]byte, 5)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return strings.ToUpper(hex.EncodeToString(bytes)), nil
}

// InviteLink builds the Telegram deep link that carries a referral code.
// An empty bot username yields an empty link.
func InviteLink(botUsername, code string) string {
	botUsername = strings.TrimPrefix(strings.TrimSpace(botUsername), "@")
	if botUsername == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, code)
}
