package readme

import (
	"strings"
	"unicode"
)

// MaxFeatures caps the number of bullet lines reported as features.
const MaxFeatures = 3

// TechKeywords is matched, in order, against the lowercased README text.
var TechKeywords = []string{
	"React", "Node.js", "TypeScript", "JavaScript", "Python",
	"Java", "Go", "Rust", "MongoDB", "PostgreSQL", "MySQL",
	"Docker", "Kubernetes", "AWS", "Azure", "GCP",
}

// ExtractTechStack returns every keyword that occurs in text as a
// case-insensitive substring. Plain substring matching means "Go" also
// matches "Google" and "Java" matches "JavaScript".
func ExtractTechStack(text string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	for _, kw := range TechKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

// ExtractFeatures returns the first MaxFeatures bullet lines of text with
// their marker and surrounding whitespace removed.
func ExtractFeatures(text string) []string {
	features := []string{}
	for _, line := range strings.Split(text, "\n") {
		feature, ok := bulletText(line)
		if !ok || feature == "" {
			continue
		}
		features = append(features, feature)
		if len(features) == MaxFeatures {
			break
		}
	}
	return features
}

// bulletText reports whether line is a "-" or "*" bullet and returns its
// content. The marker must be followed by whitespace or end the line, so
// rules like "---" and emphasis like "**bold**" are not bullets.
func bulletText(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || (line[0] != '-' && line[0] != '*') {
		return "", false
	}
	rest := line[1:]
	if rest != "" && !unicode.IsSpace(rune(rest[0])) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
