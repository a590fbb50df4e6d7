package placeholder

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/docufill/docufill/internal/core/domain"
)

var (
	emailValuePattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneValuePattern = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)
	dateValuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),
		regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`),
	}
	currencySymbolPattern = regexp.MustCompile(`[$,]`)
)

// Validate applies the type-specific acceptance rule for a candidate value.
// Types without a rule always accept. Rejection returns a human-readable
// reason shown verbatim to the user; validation never mutates state.
func Validate(t domain.PlaceholderType, value string) (bool, string) {
	switch t {
	case domain.TypeEmail:
		if !emailValuePattern.MatchString(value) {
			return false, "Please provide a valid email address"
		}
	case domain.TypePhone:
		if !phoneValuePattern.MatchString(value) {
			return false, "Please provide a valid phone number"
		}
	case domain.TypeDate:
		for _, p := range dateValuePatterns {
			if p.MatchString(value) {
				return true, ""
			}
		}
		return false, "Please provide a valid date (MM/DD/YYYY, YYYY-MM-DD, or MM-DD-YYYY)"
	case domain.TypeNumber:
		cleaned := strings.ReplaceAll(value, ",", "")
		if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
			return false, "Please provide a valid number"
		}
	case domain.TypeAmount:
		cleaned := currencySymbolPattern.ReplaceAllString(value, "")
		if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
			return false, "Please provide a valid amount (e.g., $1,000.00 or 1000)"
		}
	}
	return true, ""
}
