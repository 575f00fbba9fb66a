package tagging

import "github.com/banshee-data/velocity.tags/internal/zones"

// TurnRules holds directed (entry road, exit road) pairs per manoeuvre.
// Pairs are road-group tokens, the zone name without its lane index.
type TurnRules struct {
	Right    map[[2]string]bool
	Left     map[[2]string]bool
	Straight map[[2]string]bool
}

// DefaultTurnRules returns the layout of the five-arm intersection at
// recording location 18.
func DefaultTurnRules() TurnRules {
	return TurnRules{
		Right: map[[2]string]bool{
			{"RI", "RII"}: true, {"RII", "RIII"}: true, {"RIII", "RIV"}: true,
			{"RIV", "RI"}: true, {"RV", "RI"}: true,
		},
		Left: map[[2]string]bool{
			{"RI", "RIV"}: true, {"RIV", "RIII"}: true, {"RIII", "RII"}: true,
			{"RII", "RI"}: true,
		},
		Straight: map[[2]string]bool{
			{"RI", "RIII"}: true, {"RIII", "RI"}: true,
			{"RII", "RIV"}: true, {"RIV", "RII"}: true,
		},
	}
}

var defaultTurnRules = DefaultTurnRules()

// Classify maps an entry and exit zone to a turn. Tables are consulted in
// the order right, left, straight. Empty or malformed zone names, and
// pairs found in no table, yield TurnNone.
func (r TurnRules) Classify(start, end string) TurnTag {
	startRoad, _, ok1 := zones.SplitName(start)
	endRoad, _, ok2 := zones.SplitName(end)
	if !ok1 || !ok2 {
		return TurnNone
	}
	pair := [2]string{startRoad, endRoad}
	switch {
	case r.Right[pair]:
		return TurnRight
	case r.Left[pair]:
		return TurnLeft
	case r.Straight[pair]:
		return TurnStraight
	}
	return TurnNone
}

// ClassifyTurn classifies with DefaultTurnRules.
func ClassifyTurn(start, end string) TurnTag {
	return defaultTurnRules.Classify(start, end)
}
