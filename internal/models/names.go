package models

import "strings"

var nameSuffixes = map[string]bool{
	"jr": true, "jr.": true, "sr": true, "sr.": true,
	"ii": true, "iii": true, "iv": true,
}

func lastNameOf(name string) string {
	parts := strings.Fields(name)
	for len(parts) > 1 && nameSuffixes[strings.ToLower(parts[len(parts)-1])] {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// TrailingToken is the last word of a team or player name, lowercased.
// "New York Yankees" -> "yankees".
func TrailingToken(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}
	return strings.ToLower(parts[len(parts)-1])
}
