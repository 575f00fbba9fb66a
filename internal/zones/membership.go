package zones

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// IntersectionPrefix marks zone names whose members are drivable areas
// rather than lane segments.
const IntersectionPrefix = "INT_"

// IsIntersection reports whether a zone name denotes an intersection.
func IsIntersection(zone string) bool {
	return strings.HasPrefix(zone, IntersectionPrefix)
}

// SplitName splits a zone name on its final separator into the road-group
// token and the lane-index token: "RIII_-2" → ("RIII", "-2").
func SplitName(zone string) (road, lane string, ok bool) {
	i := strings.LastIndex(zone, "_")
	if i <= 0 || i == len(zone)-1 {
		return "", "", false
	}
	return zone[:i], zone[i+1:], true
}

// Member assigns one map element (lane segment or drivable area) to a zone.
type Member struct {
	ID   string `json:"id"`
	Zone string `json:"zone"`
}

// Membership is an ordered member table. Zone enumeration order, and
// therefore the point-location tie-break, is the order in which zone names
// first appear.
type Membership []Member

// Zones returns zone names in first-appearance order.
func (m Membership) Zones() []string {
	seen := make(map[string]bool, len(m))
	var out []string
	for _, mem := range m {
		if !seen[mem.Zone] {
			seen[mem.Zone] = true
			out = append(out, mem.Zone)
		}
	}
	return out
}

// MembersOf returns the member ids of a zone in table order.
func (m Membership) MembersOf(zone string) []string {
	var out []string
	for _, mem := range m {
		if mem.Zone == zone {
			out = append(out, mem.ID)
		}
	}
	return out
}

// Validate rejects empty fields and ids assigned to more than one zone.
func (m Membership) Validate() error {
	owner := make(map[string]string, len(m))
	for i, mem := range m {
		if mem.ID == "" || mem.Zone == "" {
			return fmt.Errorf("membership entry %d: id and zone are required", i)
		}
		if prev, ok := owner[mem.ID]; ok && prev != mem.Zone {
			return fmt.Errorf("membership entry %d: id %s already assigned to %s", i, mem.ID, prev)
		}
		owner[mem.ID] = mem.Zone
	}
	return nil
}

// LoadMembership decodes a JSON array of {"id", "zone"} objects.
func LoadMembership(r io.Reader) (Membership, error) {
	var m Membership
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode membership: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// DefaultMembership is the zone table for recording location 18: five
// approach roads (RI..RV) with signed lane groups and two intersections.
func DefaultMembership() Membership {
	return Membership{
		// RI
		{"1106", "RI_1"}, {"1105", "RI_1"}, {"1104", "RI_1"},
		{"1103", "RI_2"}, {"1107", "RI_2"}, {"1108", "RI_2"},
		{"1109", "RI_-1"}, {"1111", "RI_-1"}, {"1113", "RI_-1"},
		{"1110", "RI_-2"}, {"1112", "RI_-2"}, {"1114", "RI_-2"},
		// RII; lanes 1077 and 1084 are emergency lanes
		{"1080", "RII_1"},
		{"1077", "RII_2"},
		{"1081", "RII_-1"},
		{"1084", "RII_-2"},
		// RIII
		{"1137", "RIII_1"}, {"1063", "RIII_1"},
		{"1138", "RIII_2"}, {"1062", "RIII_2"}, {"1057", "RIII_2"},
		{"1068", "RIII_-1"}, {"1070", "RIII_-1"},
		{"1069", "RIII_-2"}, {"1071", "RIII_-2"},
		// RIV
		{"1027", "RIV_1"}, {"1033", "RIV_1"}, {"1034", "RIV_1"},
		{"1028", "RIV_2"}, {"1029", "RIV_2"}, {"1031", "RIV_2"},
		{"1032", "RIV_2"}, {"1025", "RIV_2"}, {"1026", "RIV_2"},
		{"1041", "RIV_-1"}, {"1040", "RIV_-1"}, {"1038", "RIV_-1"},
		{"1037", "RIV_-1"}, {"1036", "RIV_-1"},
		// RV
		{"1098", "RV_1"},
		// Intersections
		{"1102", "INT_1"},
		{"1003", "INT_2"},
	}
}
