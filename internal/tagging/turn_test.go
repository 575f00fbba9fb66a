package tagging

import "testing"

func TestClassifyTurn(t *testing.T) {
	tests := []struct {
		start, end string
		want       TurnTag
	}{
		{"RI_1", "RII_1", TurnRight},
		{"RI_1", "RIV_1", TurnLeft},
		{"RI_1", "RIII_1", TurnStraight},
		{"RI_1", "RV_1", TurnNone},
		{"RV_1", "RI_-1", TurnRight},
		{"RIII_-2", "RII_1", TurnLeft},
		{"RIV_2", "RII_-1", TurnStraight},
		{"RI_1", "RI_2", TurnNone},
		{"RI_1", "INT_1", TurnNone},
		{"", "RII_1", TurnNone},
		{"RI", "RII_1", TurnNone},
	}
	for _, tt := range tests {
		if got := ClassifyTurn(tt.start, tt.end); got != tt.want {
			t.Errorf("ClassifyTurn(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestTurnRulesCheckOrder(t *testing.T) {
	// A pair listed in every table resolves as right.
	pair := [2]string{"A", "B"}
	rules := TurnRules{
		Right:    map[[2]string]bool{pair: true},
		Left:     map[[2]string]bool{pair: true},
		Straight: map[[2]string]bool{pair: true},
	}
	if got := rules.Classify("A_1", "B_1"); got != TurnRight {
		t.Errorf("Classify = %q, want %q", got, TurnRight)
	}

	rules.Right = nil
	if got := rules.Classify("A_1", "B_1"); got != TurnLeft {
		t.Errorf("Classify = %q, want %q", got, TurnLeft)
	}
}

func TestDefaultTurnRulesAreFresh(t *testing.T) {
	r := DefaultTurnRules()
	delete(r.Right, [2]string{"RI", "RII"})
	if got := ClassifyTurn("RI_1", "RII_1"); got != TurnRight {
		t.Errorf("mutating a copy changed the defaults: got %q", got)
	}
}
