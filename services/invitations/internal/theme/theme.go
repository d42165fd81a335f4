// Package theme resolves a stored, possibly partial, invitation style
// configuration into the concrete values every renderer uses.
package theme

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Features holds the optional feature toggles of a stored configuration.
type Features struct {
	Gallery      *bool `json:"gallery,omitempty"`
	Music        *bool `json:"music,omitempty"`
	RSVP         *bool `json:"rsvp,omitempty"`
	GiftInfo     *bool `json:"giftInfo,omitempty"`
	CustomPhrase *bool `json:"customPhrase,omitempty"`
}

// Config is the stored configuration. A nil field means "use the default".
type Config struct {
	PrimaryColor    *string  `json:"primaryColor,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	TextColor       *string  `json:"textColor,omitempty"`
	Font            *string  `json:"font,omitempty"`
	BackgroundImage *string  `json:"backgroundImage,omitempty"`
	Features        Features `json:"features"`
}

// Merge returns c with every field present in patch replacing the current value.
func (c Config) Merge(patch Config) Config {
	out := c
	overlay(&out.PrimaryColor, patch.PrimaryColor)
	overlay(&out.BackgroundColor, patch.BackgroundColor)
	overlay(&out.TextColor, patch.TextColor)
	overlay(&out.Font, patch.Font)
	overlay(&out.BackgroundImage, patch.BackgroundImage)
	overlay(&out.Features.Gallery, patch.Features.Gallery)
	overlay(&out.Features.Music, patch.Features.Music)
	overlay(&out.Features.RSVP, patch.Features.RSVP)
	overlay(&out.Features.GiftInfo, patch.Features.GiftInfo)
	overlay(&out.Features.CustomPhrase, patch.Features.CustomPhrase)
	return out
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// FeatureSet is the resolved form of Features.
type FeatureSet struct {
	Gallery      bool `json:"gallery"`
	Music        bool `json:"music"`
	RSVP         bool `json:"rsvp"`
	GiftInfo     bool `json:"giftInfo"`
	CustomPhrase bool `json:"customPhrase"`
}

// Theme is a fully populated configuration.
type Theme struct {
	PrimaryColor    string     `json:"primaryColor"`
	BackgroundColor string     `json:"backgroundColor"`
	TextColor       string     `json:"textColor"`
	BorderColor     string     `json:"borderColor"`
	Font            Font       `json:"font"`
	BackgroundImage string     `json:"backgroundImage"`
	Features        FeatureSet `json:"features"`
}

const (
	SpacingSection = "4rem"
	SpacingBlock   = "1.5rem"
	Radius         = "12px"
)

// Default is the configuration of a brand-new invitation.
var Default = Theme{
	PrimaryColor:    "#d4a574",
	BackgroundColor: "#fffaf5",
	TextColor:       "#333333",
	BorderColor:     "rgba(212, 165, 116, 0.2)",
	Font:            fonts["playfair"],
	Features: FeatureSet{
		Gallery: true,
		RSVP:    true,
	},
}

// Resolve overlays cfg onto Default. Invalid colors and unknown fonts keep
// their defaults; it never fails.
func Resolve(cfg *Config) Theme {
	t := Default
	if cfg == nil {
		return t
	}

	t.PrimaryColor = color(cfg.PrimaryColor, t.PrimaryColor)
	t.BackgroundColor = color(cfg.BackgroundColor, t.BackgroundColor)
	t.TextColor = color(cfg.TextColor, t.TextColor)
	if tint, ok := borderTint(t.PrimaryColor); ok {
		t.BorderColor = tint
	}

	// An empty font id keeps the default, like an empty color.
	if cfg.Font != nil && strings.TrimSpace(*cfg.Font) != "" {
		t.Font = LookupFont(*cfg.Font)
	}
	if cfg.BackgroundImage != nil {
		t.BackgroundImage = strings.TrimSpace(*cfg.BackgroundImage)
	}

	f := cfg.Features
	t.Features.Gallery = flag(f.Gallery, t.Features.Gallery)
	t.Features.Music = flag(f.Music, t.Features.Music)
	t.Features.RSVP = flag(f.RSVP, t.Features.RSVP)
	t.Features.GiftInfo = flag(f.GiftInfo, t.Features.GiftInfo)
	t.Features.CustomPhrase = flag(f.CustomPhrase, t.Features.CustomPhrase)
	return t
}

func flag(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

var (
	hexColor   = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	rgbColor   = regexp.MustCompile(`^rgba?\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*(,\s*(0|1|0?\.\d+)\s*)?\)$`)
	namedColor = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
)

// ValidColor reports whether s can be inlined as a CSS color value.
func ValidColor(s string) bool {
	return hexColor.MatchString(s) || rgbColor.MatchString(s) || namedColor.MatchString(s)
}

func color(v *string, def string) string {
	if v == nil {
		return def
	}
	c := strings.TrimSpace(*v)
	if !ValidColor(c) {
		return def
	}
	return c
}

// borderTint derives the low-opacity border color from a hex primary color.
func borderTint(primary string) (string, bool) {
	if !hexColor.MatchString(primary) {
		return "", false
	}
	h := primary[1:]
	if len(h) == 3 || len(h) == 4 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	r, _ := strconv.ParseUint(h[0:2], 16, 8)
	g, _ := strconv.ParseUint(h[2:4], 16, 8)
	b, _ := strconv.ParseUint(h[4:6], 16, 8)
	return fmt.Sprintf("rgba(%d, %d, %d, 0.2)", r, g, b), true
}

// VarNames lists every style variable Vars produces, in CSS output order.
var VarNames = []string{
	"--color-primary",
	"--color-background",
	"--color-text",
	"--color-border",
	"--font-heading",
	"--font-body",
	"--spacing-section",
	"--spacing-block",
	"--radius",
}

// Vars flattens t into style variables. Every name in VarNames is present
// with a non-empty value.
func (t Theme) Vars() map[string]string {
	return map[string]string{
		"--color-primary":    t.PrimaryColor,
		"--color-background": t.BackgroundColor,
		"--color-text":       t.TextColor,
		"--color-border":     t.BorderColor,
		"--font-heading":     t.Font.Family,
		"--font-body":        t.Font.body(),
		"--spacing-section":  SpacingSection,
		"--spacing-block":    SpacingBlock,
		"--radius":           Radius,
	}
}

// CSS renders the variables as a :root declaration block.
func (t Theme) CSS() string {
	vars := t.Vars()
	var b strings.Builder
	b.WriteString(":root {")
	for _, name := range VarNames {
		fmt.Fprintf(&b, " %s: %s;", name, vars[name])
	}
	b.WriteString(" }")
	return b.String()
}

// FontURL is the external stylesheet for the heading font, or "" when the
// fallback stack is in use.
func (t Theme) FontURL() string {
	return t.Font.URL()
}
