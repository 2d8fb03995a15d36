package util

import "strings"

// SplitList splits a comma separated list, trimming spaces and dropping
// blank items. It returns nil when nothing is left.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
