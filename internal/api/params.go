package api

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Limit bounds for the billboards endpoint.
const (
	defaultLimit = 50
	maxLimit     = 2500
)

var (
	uuidRe = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	zipRe  = regexp.MustCompile(`^\d{5}$`)
)

// parseUUID returns the trimmed value when it looks like a UUID, else "".
// A malformed identifier filter is treated as absent, not as an error.
func parseUUID(v string) string {
	t := strings.TrimSpace(v)
	if uuidRe.MatchString(t) {
		return t
	}
	return ""
}

// parseLimit applies the default for missing or junk values and caps the
// result at the hard ceiling.
func parseLimit(v string) int {
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// parseZipcodes splits a comma-separated list, keeping only unique
// 5-digit values.
func parseZipcodes(v string) []string {
	if v == "" {
		return nil
	}
	seen := make(map[string]bool)
	var zipcodes []string
	for _, part := range strings.Split(v, ",") {
		z := strings.TrimSpace(part)
		if !zipRe.MatchString(z) || seen[z] {
			continue
		}
		seen[z] = true
		zipcodes = append(zipcodes, z)
	}
	return zipcodes
}

// sortZipcodes orders zipcodes numerically ascending; pairs that do not
// both parse fall back to string comparison.
func sortZipcodes(zipcodes []string) {
	sort.Slice(zipcodes, func(i, j int) bool {
		a, errA := strconv.Atoi(zipcodes[i])
		b, errB := strconv.Atoi(zipcodes[j])
		if errA != nil || errB != nil {
			return zipcodes[i] < zipcodes[j]
		}
		return a < b
	})
}
