package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cris-imc/invitaciones-sub002/pkg/textutil"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Boda Juan & María", "boda-juan-maria"},
		{"  Mis XV Años  ", "mis-xv-anos"},
		{"Cumpleaños #30!!", "cumpleanos-30"},
		{"---", ""},
		{"already-a-slug", "already-a-slug"},
		{"Ñandú   Ça va", "nandu-ca-va"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, textutil.Slugify(tt.in))
		})
	}
}

func TestIsSlug(t *testing.T) {
	require.True(t, textutil.IsSlug("boda-juan-maria"))
	require.False(t, textutil.IsSlug("Boda Juan"))
	require.False(t, textutil.IsSlug("-lead"))
	require.False(t, textutil.IsSlug(""))
}

func TestNormalizers(t *testing.T) {
	require.Equal(t, "Ana Pérez", textutil.NormalizeString("  Ana    Pérez "))
	require.Equal(t, "ana@example.com", textutil.NormalizeEmail(" Ana@Example.COM "))
	require.Equal(t, "+525512345678", textutil.NormalizePhone("+52 (55) 1234-5678"))
	require.True(t, textutil.IsValidEmail("ana@example.com"))
	require.False(t, textutil.IsValidEmail("ana@"))
}
