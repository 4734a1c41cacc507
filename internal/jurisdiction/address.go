package jurisdiction

import "strings"

// ExtractCity guesses the city portion of a free-text postal address.
//
// Heuristic: in the common "street, city, state zip" format the city is the
// second-to-last comma-delimited component. Empty components are discarded
// before counting. Returns ("", false) when fewer than two components remain.
// No validation is attempted; malformed input yields a miss, never an error.
func ExtractCity(address string) (string, bool) {
	var parts []string
	for _, p := range strings.Split(address, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) < 2 {
		return "", false
	}
	return parts[len(parts)-2], true
}
