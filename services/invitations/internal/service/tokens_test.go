package service_test

import (
	"encoding/base64"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/service"
)

func TestGenerateTokenDistinctAndFixedLength(t *testing.T) {
	const n = 1000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		tok, err := service.GenerateToken()
		require.NoError(t, err)
		require.Len(t, tok, domain.TokenLength)
		_, dup := seen[tok]
		require.False(t, dup, "duplicate token %q", tok)
		seen[tok] = struct{}{}
	}
}

// Shannon entropy of the decoded bytes over many tokens should sit close to
// 8 bits per byte for a uniform source.
func TestGenerateTokenEntropy(t *testing.T) {
	var counts [256]int
	total := 0
	for i := 0; i < 1000; i++ {
		tok, err := service.GenerateToken()
		require.NoError(t, err)
		raw, err := base64.RawURLEncoding.DecodeString(tok)
		require.NoError(t, err)
		require.Len(t, raw, 24)
		for _, b := range raw {
			counts[b]++
			total++
		}
	}

	entropy := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	require.Greater(t, entropy, 7.9)
}

func TestGuestLink(t *testing.T) {
	require.Equal(t, "https://inv.example/invite/7/abc", service.GuestLink("https://inv.example", 7, "abc"))
}
