package affordance

// tells.go implements the forbidden-pattern tell validator (spec.md §6):
// tells must never include numbers, percentages, or explicit cause-effect
// wording, and must never have the entity "speak".
import "regexp"

var forbiddenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[+-]?\d`),                                  // any digit, with or without a sign
	regexp.MustCompile(`\d+%`),                                     // percentages (redundant with the above, kept explicit per spec wording)
	regexp.MustCompile(`(?i)affinity\s*:`),                         // "Affinity:"
	regexp.MustCompile(`(?i)reputation\s*:`),                       // "reputation:"
	regexp.MustCompile(`(?i)\bbecause you\b`),                      // explicit cause-effect
	regexp.MustCompile(`(?i)\b(says|whispers|urges|speaks)\b`),     // entity speech verbs
}

// ValidTell reports whether tell is free of every forbidden pattern. A tell
// failing this check is a ValidationError at registration time.
func ValidTell(tell string) bool {
	for _, re := range forbiddenPatterns {
		if re.MatchString(tell) {
			return false
		}
	}
	return true
}
