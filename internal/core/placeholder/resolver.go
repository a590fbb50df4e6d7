package placeholder

import (
	"regexp"
	"strings"

	"github.com/docufill/docufill/internal/core/domain"
)

// Name derives the stable name for a bracket marker body: spaces and hyphens
// become underscores, nothing else is touched. Callers needing a fully safe
// identifier use SafeName.
func Name(body string) string {
	name := strings.TrimSpace(body)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

var (
	enclosurePattern  = regexp.MustCompile(`[\[\]{}()<>]`)
	nonIdentPattern   = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	underscoreRunsPat = regexp.MustCompile(`_+`)
)

// SafeName normalizes arbitrary marker text into a strict identifier:
// bracket/brace/angle characters are stripped, any other non-word character
// collapses to an underscore, repeated underscores collapse, and leading or
// trailing underscores are trimmed. An empty result falls back to
// "placeholder".
func SafeName(text string) string {
	clean := enclosurePattern.ReplaceAllString(text, "")
	clean = nonIdentPattern.ReplaceAllString(clean, "_")
	clean = underscoreRunsPat.ReplaceAllString(clean, "_")
	clean = strings.Trim(clean, "_")
	if clean == "" {
		return "placeholder"
	}
	return clean
}

// typeRule is one step of the inference cascade. Order matters: the first
// rule with a keyword hit wins.
type typeRule struct {
	t        domain.PlaceholderType
	keywords []string
}

var typeCascade = []typeRule{
	{domain.TypeDate, []string{"date", "day", "month", "year", "time"}},
	{domain.TypeName, []string{"name", "client", "party", "person", "individual"}},
	{domain.TypeAmount, []string{"amount", "price", "cost", "fee", "payment", "money", "dollar", "$"}},
	{domain.TypeEmail, []string{"email", "mail", "@"}},
	{domain.TypeAddress, []string{"address", "street", "city", "state", "zip", "location"}},
	{domain.TypePhone, []string{"phone", "telephone", "mobile", "cell"}},
	{domain.TypeNumber, []string{"number", "count", "quantity", "#"}},
	{domain.TypePercentage, []string{"percent", "%", "rate", "ratio"}},
	{domain.TypeBoolean, []string{"yes", "no", "true", "false", "check", "select"}},
}

// InferType runs the keyword cascade over the lower-cased marker text.
func InferType(markerText string) domain.PlaceholderType {
	lower := strings.ToLower(markerText)
	for _, rule := range typeCascade {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.t
			}
		}
	}
	return domain.TypeText
}

// Dedupe keeps the first placeholder per stable name, preserving order.
func Dedupe(in []domain.Placeholder) []domain.Placeholder {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.Placeholder, 0, len(in))
	for _, p := range in {
		if _, ok := seen[p.StableName]; ok {
			continue
		}
		seen[p.StableName] = struct{}{}
		out = append(out, p)
	}
	return out
}
