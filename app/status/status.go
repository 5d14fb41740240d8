// Package status maps free-text vehicle statuses from feed items to a
// closed canonical set and decides which status transitions warrant a
// notification.
package status

import (
	"embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Status is a canonical vehicle status.
type Status string

const (
	StatusAvailable              Status = "Disponible"
	StatusUnavailableEquipment   Status = "Indisponible matériel"
	StatusUnavailableOperational Status = "Indisponible opérationnel"
	StatusDisinfection           Status = "Désinfection en cours"
	StatusOnMission              Status = "En intervention"
	StatusReturnToService        Status = "Retour service"
	StatusOutOfService           Status = "Hors service"
)

// StatusFallback is returned when the input maps to nothing in the alias
// table. An unreadable status is treated as a vehicle out of service.
const StatusFallback = StatusOutOfService

//go:embed aliases.yml
var aliasFS embed.FS

type aliasRule struct {
	Alias  string
	Status Status
}

type aliasDocument struct {
	Statuses []struct {
		Status  string   `yaml:"status"`
		Aliases []string `yaml:"aliases"`
	} `yaml:"statuses"`
}

// aliasRules is the prioritized rule list in declaration order. The
// substring fallback in Normalize accepts the first match, so the slice
// order is part of the observable behavior.
var aliasRules []aliasRule

// aliasExact provides the exact-match fast path over the same rules.
var aliasExact map[string]Status

func init() {
	rules, err := loadAliasRules()
	if err != nil {
		panic(fmt.Sprintf("status: failed to load alias table: %v", err))
	}
	aliasRules = rules
	aliasExact = make(map[string]Status, len(rules))
	for _, r := range rules {
		if _, ok := aliasExact[r.Alias]; !ok {
			aliasExact[r.Alias] = r.Status
		}
	}
}

func loadAliasRules() ([]aliasRule, error) {
	data, err := aliasFS.ReadFile("aliases.yml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded alias table: %w", err)
	}

	var doc aliasDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse alias table: %w", err)
	}

	var rules []aliasRule
	for _, group := range doc.Statuses {
		if group.Status == "" {
			return nil, fmt.Errorf("alias group with empty status")
		}
		for _, alias := range group.Aliases {
			cleaned := Clean(alias)
			if cleaned == "" {
				return nil, fmt.Errorf("empty alias for status %q", group.Status)
			}
			rules = append(rules, aliasRule{Alias: cleaned, Status: Status(group.Status)})
		}
	}

	if len(rules) == 0 {
		return nil, fmt.Errorf("alias table is empty")
	}

	return rules, nil
}

// Normalize maps a raw status string to a canonical Status. It is a total
// function: unmappable or empty input yields StatusFallback.
//
// Matching is exact-first over the cleaned input, then a first-match-wins
// substring containment scan over the alias rules in declaration order.
// The containment test runs in both directions, so "vehicule disponible"
// matches the "disponible" alias and the truncated "dispo" matches too.
// This is a deliberately loose heuristic: short inputs can match an
// unintended alias, and the declared rule order is the only tie-break.
func Normalize(raw string) Status {
	cleaned := Clean(raw)
	if cleaned == "" {
		return StatusFallback
	}

	if s, ok := aliasExact[cleaned]; ok {
		return s
	}

	for _, r := range aliasRules {
		if strings.Contains(cleaned, r.Alias) || strings.Contains(r.Alias, cleaned) {
			return r.Status
		}
	}

	return StatusFallback
}

// accentFolder decomposes characters and drops combining marks, turning
// "é" into "e" and "ç" into "c".
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Clean lower-cases the input, folds accents, strips punctuation and
// collapses runs of whitespace into single spaces.
func Clean(raw string) string {
	folded, _, err := transform.String(accentFolder, strings.ToLower(raw))
	if err != nil {
		folded = strings.ToLower(raw)
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// All returns every canonical status in a fixed order.
func All() []Status {
	return []Status{
		StatusAvailable,
		StatusUnavailableEquipment,
		StatusUnavailableOperational,
		StatusDisinfection,
		StatusOnMission,
		StatusReturnToService,
		StatusOutOfService,
	}
}

// Emoji returns the indicator used in notification embeds.
func Emoji(s Status) string {
	switch s {
	case StatusAvailable:
		return "✅"
	case StatusUnavailableEquipment:
		return "🔧"
	case StatusUnavailableOperational:
		return "⚠️"
	case StatusDisinfection:
		return "🧽"
	case StatusOnMission:
		return "🚨"
	case StatusReturnToService:
		return "🔄"
	case StatusOutOfService:
		return "❌"
	default:
		return "❓"
	}
}

// Color returns the embed accent color for a status.
func Color(s Status) int {
	switch s {
	case StatusAvailable:
		return 0x00ff00
	case StatusUnavailableEquipment:
		return 0xff0000
	case StatusUnavailableOperational:
		return 0xffa500
	case StatusDisinfection:
		return 0x00bfff
	case StatusOnMission:
		return 0xff4500
	case StatusReturnToService:
		return 0xffff00
	default:
		return 0x808080
	}
}
