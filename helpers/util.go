package helpers

import (
	"errors"
	"strings"
)

// SplitPair splits target around the first sep and trims both halves.
// Both halves must be non-empty.
func SplitPair(target string, sep string) (string, string, error) {
	left, right, ok := strings.Cut(target, sep)
	if !ok {
		return "", "", errors.New("separator " + sep + " not found in " + target)
	}
	left, right = strings.TrimSpace(left), strings.TrimSpace(right)
	if left == "" || right == "" {
		return "", "", errors.New("empty part in " + target)
	}
	return left, right, nil
}

// SplitList splits a comma separated list, dropping blank entries
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// CollapseWhitespace replaces every whitespace run with a single space and
// trims both ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
