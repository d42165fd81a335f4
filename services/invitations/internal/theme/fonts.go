package theme

import (
	"sort"
	"strings"
)

type Font struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Family string `json:"family"`
	// BodyFamily overrides the body stack for display faces that don't read
	// well at paragraph size.
	BodyFamily string `json:"bodyFamily,omitempty"`
	// Resource is the Google Fonts family parameter; empty for system stacks.
	Resource string `json:"resource,omitempty"`
}

func (f Font) body() string {
	if f.BodyFamily != "" {
		return f.BodyFamily
	}
	return f.Family
}

func (f Font) URL() string {
	if f.Resource == "" {
		return ""
	}
	return "https://fonts.googleapis.com/css2?family=" + f.Resource + "&display=swap"
}

const systemSans = `"Helvetica Neue", Helvetica, Arial, sans-serif`

// FallbackFont is used for unknown font ids.
var FallbackFont = Font{
	ID:     "sans",
	Name:   "Sans Serif",
	Family: systemSans,
}

var fonts = map[string]Font{
	"playfair": {
		ID:       "playfair",
		Name:     "Playfair Display",
		Family:   `"Playfair Display", Georgia, serif`,
		Resource: "Playfair+Display:wght@400;700",
	},
	"great-vibes": {
		ID:         "great-vibes",
		Name:       "Great Vibes",
		Family:     `"Great Vibes", cursive`,
		BodyFamily: systemSans,
		Resource:   "Great+Vibes",
	},
	"montserrat": {
		ID:       "montserrat",
		Name:     "Montserrat",
		Family:   `Montserrat, "Helvetica Neue", sans-serif`,
		Resource: "Montserrat:wght@400;600",
	},
	"cormorant": {
		ID:       "cormorant",
		Name:     "Cormorant Garamond",
		Family:   `"Cormorant Garamond", Garamond, serif`,
		Resource: "Cormorant+Garamond:wght@400;600",
	},
	"dancing-script": {
		ID:         "dancing-script",
		Name:       "Dancing Script",
		Family:     `"Dancing Script", cursive`,
		BodyFamily: systemSans,
		Resource:   "Dancing+Script:wght@400;700",
	},
	"lora": {
		ID:       "lora",
		Name:     "Lora",
		Family:   `Lora, Georgia, serif`,
		Resource: "Lora:wght@400;700",
	},
	"poppins": {
		ID:       "poppins",
		Name:     "Poppins",
		Family:   `Poppins, "Helvetica Neue", sans-serif`,
		Resource: "Poppins:wght@400;600",
	},
}

// LookupFont returns the registered font for id, or FallbackFont.
func LookupFont(id string) Font {
	if f, ok := fonts[strings.ToLower(strings.TrimSpace(id))]; ok {
		return f
	}
	return FallbackFont
}

// KnownFont reports whether id is in the registry.
func KnownFont(id string) bool {
	_, ok := fonts[strings.ToLower(strings.TrimSpace(id))]
	return ok
}

// Fonts lists the registry sorted by id.
func Fonts() []Font {
	out := make([]Font, 0, len(fonts))
	for _, f := range fonts {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
