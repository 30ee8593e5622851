package checkout

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tiers are the fixed shipping prices.
type Tiers struct {
	// Local applies when the resolved place mentions Keyword.
	Local float64 `yaml:"local"`
	// National applies to any other place inside CountryCode.
	National float64 `yaml:"national"`
	// Default is the flat price used when addresses are not geocoded.
	Default float64 `yaml:"default"`

	Keyword     string `yaml:"keyword"`
	CountryCode string `yaml:"country_code"`
}

// DefaultTiers are the prices used when no shipping file is configured.
var DefaultTiers = Tiers{
	Local:       1500,
	National:    3000,
	Default:     500,
	Keyword:     "Buenos Aires",
	CountryCode: "ar",
}

// Place is the outcome of a forward or reverse geocoding lookup.
type Place struct {
	Found       bool
	DisplayName string
	CountryCode string
	Lat         float64
	Lon         float64
}

// Quote is a shipping cost decision. Resolved is false when the place cannot
// be shipped to.
type Quote struct {
	Cost     float64 `json:"cost"`
	Resolved bool    `json:"resolved"`
	Tier     string  `json:"tier"`
}

// Tier names.
const (
	TierLocal      = "local"
	TierNational   = "national"
	TierDefault    = "default"
	TierOutOfRange = "out_of_range"
	TierUnresolved = "unresolved"
)

// ShippingCost maps a resolved place to a price. Both the typed-address path
// and the map-click path go through here.
func ShippingCost(p Place, t Tiers) Quote {
	if !p.Found {
		return Quote{Tier: TierUnresolved}
	}
	if t.CountryCode != "" && p.CountryCode != "" && !strings.EqualFold(p.CountryCode, t.CountryCode) {
		return Quote{Cost: 0, Tier: TierOutOfRange}
	}
	if t.Keyword != "" && strings.Contains(fold(p.DisplayName), fold(t.Keyword)) {
		return Quote{Cost: t.Local, Resolved: true, Tier: TierLocal}
	}
	return Quote{Cost: t.National, Resolved: true, Tier: TierNational}
}

// FlatQuote is the price used when geocoding is disabled.
func FlatQuote(t Tiers) Quote {
	return Quote{Cost: t.Default, Resolved: true, Tier: TierDefault}
}

// fold lowercases and strips accents so "Córdoba" matches "cordoba".
func fold(s string) string {
	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(tr, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
