// Package report maps the user's language to the right cybercrime
// reporting portal and formats a shareable summary of a verdict.
package report

import (
	"fmt"
	"strings"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/types"
)

// fallbackPortal covers every language without a dedicated entry.
const fallbackPortal = "https://cybercrime.gov.in"

// portals maps a language code to the regional reporting portal.
var portals = map[string]string{
	"hi":    "https://cybercrime.gov.in",
	"bn":    "https://cybercrime.gov.in",
	"mr":    "https://cybercrime.gov.in",
	"ta":    "https://cybercrime.gov.in",
	"te":    "https://cybercrime.gov.in",
	"gu":    "https://cybercrime.gov.in",
	"pa":    "https://cybercrime.gov.in",
	"ur":    "https://cybercrime.gov.in",
	"en":    "https://cybercrime.gov.in",
	"en-IN": "https://cybercrime.gov.in",
	"ar":    "https://www.amai.gov.ae/",
	"fr":    "https://www.cybermalveillance.gouv.fr/",
	"de":    "https://www.bsi-fuer-buerger.de/",
	"en-US": "https://www.ic3.gov/",
	"en-GB": "https://www.actionfraud.police.uk/",
}

// PortalURL returns the reporting portal for the given language code,
// falling back to the national Indian portal for unknown codes.
func PortalURL(language string) string {
	if url, ok := portals[language]; ok {
		return url
	}
	return fallbackPortal
}

// FormatReport renders the shareable plain-text report for a verdict.
// message is the originally submitted text; when the submission was a
// screenshot only, a placeholder is used.
func FormatReport(result *types.AnalysisResult, message string) string {
	if strings.TrimSpace(message) == "" {
		message = "Screenshot shared"
	}
	return fmt.Sprintf(
		"[Kavach AI Security Report]\nStatus: %s\nSummary: %s\nExplanation: %s\nMessage: %s",
		result.RiskLevel, result.Summary, result.Explanation, message,
	)
}
