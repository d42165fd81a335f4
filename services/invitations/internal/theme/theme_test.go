package theme_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/theme"
)

func ptr[T any](v T) *T { return &v }

func requireAllVars(t *testing.T, th theme.Theme) {
	t.Helper()
	vars := th.Vars()
	require.Len(t, vars, len(theme.VarNames))
	for _, name := range theme.VarNames {
		require.NotEmpty(t, vars[name], "variable %s is empty", name)
	}
}

func TestResolveNeverMissesVariables(t *testing.T) {
	cases := map[string]*theme.Config{
		"nil":   nil,
		"empty": {},
		"some": {
			PrimaryColor: ptr("#112233"),
			Font:         ptr("lora"),
		},
		"all": {
			PrimaryColor:    ptr("#abc"),
			BackgroundColor: ptr("rgb(10, 20, 30)"),
			TextColor:       ptr("black"),
			Font:            ptr("great-vibes"),
			BackgroundImage: ptr("/uploads/bg.png"),
			Features: theme.Features{
				Gallery:      ptr(false),
				Music:        ptr(true),
				RSVP:         ptr(false),
				GiftInfo:     ptr(true),
				CustomPhrase: ptr(true),
			},
		},
		"empty strings": {
			PrimaryColor: ptr(""),
			TextColor:    ptr("   "),
			Font:         ptr(""),
		},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			requireAllVars(t, theme.Resolve(cfg))
		})
	}
}

func TestResolveOverlaysPresentFieldsOnly(t *testing.T) {
	th := theme.Resolve(&theme.Config{
		PrimaryColor: ptr("#112233"),
		Features:     theme.Features{Music: ptr(true), Gallery: ptr(false)},
	})

	require.Equal(t, "#112233", th.PrimaryColor)
	require.Equal(t, "rgba(17, 34, 51, 0.2)", th.BorderColor)
	require.Equal(t, theme.Default.BackgroundColor, th.BackgroundColor)
	require.Equal(t, theme.Default.TextColor, th.TextColor)
	require.Equal(t, theme.Default.Font, th.Font)
	require.True(t, th.Features.Music)
	require.False(t, th.Features.Gallery)
	require.Equal(t, theme.Default.Features.RSVP, th.Features.RSVP)
}

func TestResolveUnknownFontFallsBack(t *testing.T) {
	th := theme.Resolve(&theme.Config{Font: ptr("comic-sans-neue")})
	require.Equal(t, theme.FallbackFont, th.Font)
	require.Empty(t, th.FontURL())
	requireAllVars(t, th)
}

func TestResolveEmptyValuesKeepDefaults(t *testing.T) {
	th := theme.Resolve(&theme.Config{Font: ptr("  "), PrimaryColor: ptr("")})
	require.Equal(t, theme.Default.Font, th.Font)
	require.Equal(t, theme.Default.PrimaryColor, th.PrimaryColor)
	require.Equal(t, theme.Default.FontURL(), th.FontURL())
}

func TestResolveKnownFont(t *testing.T) {
	th := theme.Resolve(&theme.Config{Font: ptr(" Great-Vibes ")})
	require.Equal(t, "great-vibes", th.Font.ID)
	require.Contains(t, th.Vars()["--font-heading"], "Great Vibes")
	// script faces fall back to a readable body stack
	require.NotContains(t, th.Vars()["--font-body"], "Great Vibes")
	require.True(t, strings.HasPrefix(th.FontURL(), "https://fonts.googleapis.com/css2?family=Great+Vibes"))
}

func TestResolveRejectsUnsafeColors(t *testing.T) {
	for _, c := range []string{
		"red; background: url(javascript:alert(1))",
		"expression(alert(1))",
		"#12345",
		"rgb(1,2)",
		"</style>",
	} {
		th := theme.Resolve(&theme.Config{PrimaryColor: ptr(c), TextColor: ptr(c)})
		require.Equal(t, theme.Default.PrimaryColor, th.PrimaryColor, c)
		require.Equal(t, theme.Default.TextColor, th.TextColor, c)
	}
}

func TestBorderTintDefaultsForNonHexPrimary(t *testing.T) {
	th := theme.Resolve(&theme.Config{PrimaryColor: ptr("rgba(1, 2, 3, 0.5)")})
	require.Equal(t, "rgba(1, 2, 3, 0.5)", th.PrimaryColor)
	require.Equal(t, theme.Default.BorderColor, th.BorderColor)
}

func TestCSSIsDeterministic(t *testing.T) {
	th := theme.Resolve(nil)
	css := th.CSS()
	require.Equal(t, css, th.CSS())
	require.True(t, strings.HasPrefix(css, ":root {"))
	require.Less(t, strings.Index(css, "--color-primary"), strings.Index(css, "--radius"))
}

func TestMerge(t *testing.T) {
	base := theme.Config{PrimaryColor: ptr("#111111"), Font: ptr("lora")}
	merged := base.Merge(theme.Config{Font: ptr("poppins"), Features: theme.Features{RSVP: ptr(false)}})

	require.Equal(t, "#111111", *merged.PrimaryColor)
	require.Equal(t, "poppins", *merged.Font)
	require.False(t, *merged.Features.RSVP)
	require.Equal(t, "lora", *base.Font, "merge must not mutate the receiver")
}

func TestFontsSorted(t *testing.T) {
	fonts := theme.Fonts()
	require.Len(t, fonts, 7)
	for i := 1; i < len(fonts); i++ {
		require.Less(t, fonts[i-1].ID, fonts[i].ID)
	}
	require.True(t, theme.KnownFont("playfair"))
	require.False(t, theme.KnownFont("sans"))
}
