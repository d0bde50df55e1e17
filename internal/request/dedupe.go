package request

import (
	"strconv"
	"strings"
)

// DuplicateGroup collects the ids of records sharing one duplicate key, in
// the order the records appeared in the result set.
type DuplicateGroup struct {
	Key string   `json:"key"`
	IDs []string `json:"ids"`
}

// DuplicateKey derives the record's duplicate-detection key, composed of the
// trimmed tracking number, the amount rendered without trailing zeros, and
// the trimmed currency. Records missing any component are exempt from
// duplicate detection and the second return is false.
func (r Record) DuplicateKey() (string, bool) {
	tn := strings.TrimSpace(r.TrackingNumber)
	cur := strings.TrimSpace(r.AmountCurrency)
	if tn == "" || r.Amount == nil || cur == "" {
		return "", false
	}
	return tn + "-" + formatAmountKey(*r.Amount) + "-" + cur, true
}

// formatAmountKey renders an amount the way the duplicate key expects:
// shortest representation that round-trips, so 1500 and 1500.0 collide and
// 1500.5 stays distinct.
func formatAmountKey(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}

// TrackingFromKey recovers the tracking-number segment of a duplicate key for
// display on resolution records.
func TrackingFromKey(key string) string {
	segment, _, _ := strings.Cut(key, "-")
	return segment
}

// DuplicateGroups scans a result set and returns the groups of two or more
// records sharing a duplicate key. Group order follows the first appearance
// of each key; singleton keys produce no group.
func DuplicateGroups(records []Record) []DuplicateGroup {
	var order []string
	members := make(map[string][]string)
	for _, r := range records {
		key, ok := r.DuplicateKey()
		if !ok {
			continue
		}
		if _, seen := members[key]; !seen {
			order = append(order, key)
		}
		members[key] = append(members[key], r.ID)
	}

	var groups []DuplicateGroup
	for _, key := range order {
		if ids := members[key]; len(ids) >= 2 {
			groups = append(groups, DuplicateGroup{Key: key, IDs: ids})
		}
	}
	return groups
}
