// Package checks implements the monitoring checkers that run against
// each AWS account.
package checks

import (
	"fmt"
	"strings"

	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

func bar(n int) string  { return strings.Repeat("=", n) }
func dash(n int) string { return strings.Repeat("-", n) }

func humanGB(b float64) string {
	return fmt.Sprintf("%.1f GB", b/(1024*1024*1024))
}

// truncate caps a string at n runes so headline text with multi-byte
// characters is never cut mid-rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Capitalize upper-cases the first letter, leaving the rest unchanged.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// renderErrors appends the capped error preview used by every
// consolidated section.
func renderErrors(lines []string, errors []entity.ProfileError) []string {
	lines = append(lines, "Errors:")
	for i, e := range errors {
		if i == 5 {
			break
		}
		lines = append(lines, fmt.Sprintf("  * %s: %s", e.Profile, e.Message))
	}
	if len(errors) > 5 {
		lines = append(lines, fmt.Sprintf("  ... and %d more", len(errors)-5))
	}
	return lines
}
