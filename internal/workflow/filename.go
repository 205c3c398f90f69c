package workflow

import (
	"strings"
	"unicode/utf16"

	"github.com/fmuoria/resume-tailor/internal/models"
)

// Sanitize replaces every UTF-16 code unit outside [A-Za-z0-9] with '_', so a
// character beyond the Basic Multilingual Plane becomes "__"
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			n := utf16.RuneLen(r)
			if n < 1 {
				n = 1
			}
			b.WriteString(strings.Repeat("_", n))
		}
	}
	return b.String()
}

// Filename builds <profile>_<company>_<role>.pdf. Every save path uses it.
func Filename(job models.JobSubmission) string {
	return Sanitize(job.ProfileName) + "_" + Sanitize(job.Company) + "_" + Sanitize(job.Role) + ".pdf"
}
