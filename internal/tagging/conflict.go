package tagging

// DedupeTags removes repeated tags, keeping the first occurrence of each.
func DedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ResolveConflicts drops contradictory turn tags, preserving the order of
// what remains:
//   - a straight verdict removes turning_left, turning_right, left and right;
//   - turning_left with turning_right removes both;
//   - left with right removes both.
func ResolveConflicts(tags []string) []string {
	has := make(map[string]bool, len(tags))
	for _, t := range tags {
		has[t] = true
	}
	straight := has[string(TurnStraight)]
	bothTurning := has[TagTurningLeft] && has[TagTurningRight]
	bothWindow := has[string(TurnLeft)] && has[string(TurnRight)]

	out := make([]string, 0, len(tags))
	for _, t := range tags {
		switch t {
		case TagTurningLeft, TagTurningRight:
			if straight || bothTurning {
				continue
			}
		case string(TurnLeft), string(TurnRight):
			if straight || bothWindow {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}
