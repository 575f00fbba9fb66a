package tagging

import "fmt"

// MatchWindows slides a window of windowSize points across the trajectory,
// advancing slideStep points at a time. A window that would run past the
// last point is dropped. Each window gets one verdict: the turn implied by
// its first and last stable zones, or TurnNone when either zone is missing
// or the pair is not recognized. Verdict frames are the frame numbers of
// the window's first and last points.
func MatchWindows(loc ZoneLocator, points []TrajectoryPoint, target TurnTag, windowSize, slideStep, minFrames int) ([]WindowVerdict, error) {
	if err := checkWindowArgs(points, windowSize, slideStep, minFrames); err != nil {
		return nil, err
	}
	return matchWindows(locateTrajectory(loc, points), points, defaultTurnRules, target, windowSize, slideStep, minFrames), nil
}

// MatchWindowsFallback tries each window size in order, clamping it to the
// trajectory length, and returns the verdicts of the first size that
// produced a recognized turn. If none did, the last size's verdicts are
// returned. The size actually used is returned alongside.
func MatchWindowsFallback(loc ZoneLocator, points []TrajectoryPoint, target TurnTag, sizes []int, slideStep, minFrames int) ([]WindowVerdict, int, error) {
	return matchWindowsFallback(locateTrajectory(loc, points), points, defaultTurnRules, target, sizes, slideStep, minFrames)
}

func matchWindowsFallback(zoneSeq []string, points []TrajectoryPoint, rules TurnRules, target TurnTag, sizes []int, slideStep, minFrames int) ([]WindowVerdict, int, error) {
	if len(sizes) == 0 {
		return nil, 0, fmt.Errorf("%w: no window sizes", ErrInvalidParameter)
	}
	var (
		verdicts []WindowVerdict
		used     int
	)
	for _, size := range sizes {
		if size > len(points) {
			size = len(points)
		}
		if err := checkWindowArgs(points, size, slideStep, minFrames); err != nil {
			return nil, 0, err
		}
		verdicts = matchWindows(zoneSeq, points, rules, target, size, slideStep, minFrames)
		used = size
		if anyRecognized(verdicts) {
			break
		}
	}
	return verdicts, used, nil
}

func checkWindowArgs(points []TrajectoryPoint, windowSize, slideStep, minFrames int) error {
	if len(points) == 0 {
		return ErrEmptyTrajectory
	}
	if windowSize < 1 || slideStep < 1 || minFrames < 1 {
		return fmt.Errorf("%w: windowSize %d, slideStep %d, minFrames %d must all be at least 1",
			ErrInvalidParameter, windowSize, slideStep, minFrames)
	}
	return nil
}

func locateTrajectory(loc ZoneLocator, points []TrajectoryPoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		if zone, ok := loc.ZoneOf(p.XY()); ok {
			out[i] = zone
		}
	}
	return out
}

// matchWindows works on pre-resolved zones so overlapping windows do not
// repeat point location.
func matchWindows(zoneSeq []string, points []TrajectoryPoint, rules TurnRules, target TurnTag, windowSize, slideStep, minFrames int) []WindowVerdict {
	var out []WindowVerdict
	for start := 0; start+windowSize <= len(points); start += slideStep {
		end := start + windowSize
		first, last := stableZones(zoneSeq[start:end], minFrames)

		tag := TurnNone
		if first != "" && last != "" {
			tag = rules.Classify(first, last)
		}
		out = append(out, WindowVerdict{
			StartFrame: points[start].Frame,
			EndFrame:   points[end-1].Frame,
			StartZone:  first,
			EndZone:    last,
			TurnTag:    tag,
			Matched:    tag != TurnNone && tag == target,
		})
	}
	return out
}

func anyRecognized(verdicts []WindowVerdict) bool {
	for _, v := range verdicts {
		if v.TurnTag != TurnNone {
			return true
		}
	}
	return false
}
