package tagging

import "github.com/banshee-data/velocity.tags/internal/config"

// Config holds every threshold the tagger uses.
type Config struct {
	// Window matching
	StableMinFrames int     // consecutive points for a zone to count as stable
	WindowSizes     []int   // tried in order by the fallback matcher
	SlideStep       int     // points between window starts
	TargetTag       TurnTag // sets WindowVerdict.Matched

	HistoryCapacity int // per-track ring buffer size

	// Lane change
	LaneChangeMinHistory int // history entries before detection starts
	LaneChangeLookback   int // previous zones examined
	LaneChangeMinValid   int // in-zone entries required within the lookback
	LaneChangeStableRun  int // equal consecutive zones for a stable lane
	LaneChangeScanSpan   int // span searched for that run

	// Heading turns
	TurnMinHistory         int
	HeadingLookback        int
	HeadingChangeThreshold float64 // degrees of cumulative heading change
	IntersectionProximity  float64 // metres

	// Speed regimes
	MovingSpeedThreshold float64
	StoppedSpeedMax      float64
	SlowSpeedMax         float64
	NormalSpeedMax       float64
	AccelerationBand     float64

	Workers int // 0 derives the pool size from GOMAXPROCS
}

// DefaultConfig returns the configuration in config/tagging.defaults.json.
// Panics if the file cannot be found, like config.MustLoadDefaultConfig.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TaggingConfig. Unset
// fields take the accessor defaults.
func ConfigFromTuning(cfg *config.TaggingConfig) Config {
	target, ok := ParseTurnTag(cfg.GetTargetTag())
	if !ok {
		target = TurnRight
	}
	return Config{
		StableMinFrames:        cfg.GetStableMinFrames(),
		WindowSizes:            cfg.GetWindowSizes(),
		SlideStep:              cfg.GetSlideStep(),
		TargetTag:              target,
		HistoryCapacity:        cfg.GetHistoryCapacity(),
		LaneChangeMinHistory:   cfg.GetLaneChangeMinHistory(),
		LaneChangeLookback:     cfg.GetLaneChangeLookback(),
		LaneChangeMinValid:     cfg.GetLaneChangeMinValid(),
		LaneChangeStableRun:    cfg.GetLaneChangeStableRun(),
		LaneChangeScanSpan:     cfg.GetLaneChangeScanSpan(),
		TurnMinHistory:         cfg.GetTurnMinHistory(),
		HeadingLookback:        cfg.GetHeadingLookback(),
		HeadingChangeThreshold: cfg.GetHeadingChangeThreshold(),
		IntersectionProximity:  cfg.GetIntersectionProximity(),
		MovingSpeedThreshold:   cfg.GetMovingSpeedThreshold(),
		StoppedSpeedMax:        cfg.GetStoppedSpeedMax(),
		SlowSpeedMax:           cfg.GetSlowSpeedMax(),
		NormalSpeedMax:         cfg.GetNormalSpeedMax(),
		AccelerationBand:       cfg.GetAccelerationBand(),
		Workers:                cfg.GetWorkers(),
	}
}
