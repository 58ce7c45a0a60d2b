// Package challenge decides when an interviewer reply should surface the
// coding editor.
package challenge

import "strings"

// triggerPhrases are the fixed markers an interviewer reply is scanned
// for. Matching is plain case-insensitive containment; no stemming or
// tokenization. False positives and negatives are accepted.
var triggerPhrases = []string{
	"coding question",
	"algorithm",
	"write a function",
	"implement",
}

// Detect reports whether the reply text should make the coding surface
// visible. Detection only ever shows the surface; hiding it is an
// explicit user or session action.
func Detect(reply string) bool {
	lower := strings.ToLower(reply)
	for _, phrase := range triggerPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
