package domain

import (
	"regexp"
	"strconv"
)

// Virtual week references look like "{base}_week_{N}". The base part is the
// id (primary or external) of the assignment the recurring schedule started
// from.
var virtualWeekPattern = regexp.MustCompile(`^(.+)_week_(\d+)$`)

// ParseReference splits a virtual week reference into its base reference and
// week number. Week 1 is always materialized eagerly, so suffixes below
// _week_2 are not treated as virtual and the whole string is returned as-is.
func ParseReference(reference string) (base string, week int, virtual bool) {
	m := virtualWeekPattern.FindStringSubmatch(reference)
	if m == nil {
		return reference, 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 2 {
		return reference, 0, false
	}
	return m[1], n, true
}
