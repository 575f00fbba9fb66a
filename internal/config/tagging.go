package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tagging defaults file.
const DefaultConfigPath = "config/tagging.defaults.json"

// TaggingConfig is the root configuration for the tagging engine.
// Every field is optional: a nil field falls back to the default returned
// by its Get* accessor, so partial JSON files are safe.
type TaggingConfig struct {
	// Stable-zone and window matching
	StableMinFrames *int    `json:"stable_min_frames,omitempty"`
	WindowSizes     []int   `json:"window_sizes,omitempty"`
	SlideStep       *int    `json:"slide_step,omitempty"`
	TargetTag       *string `json:"target_tag,omitempty"` // "left", "right" or "straight"

	// Frame history
	HistoryCapacity *int `json:"history_capacity,omitempty"`

	// Lane change detection
	LaneChangeMinHistory *int `json:"lane_change_min_history,omitempty"`
	LaneChangeLookback   *int `json:"lane_change_lookback,omitempty"`
	LaneChangeMinValid   *int `json:"lane_change_min_valid,omitempty"`
	LaneChangeStableRun  *int `json:"lane_change_stable_run,omitempty"`
	LaneChangeScanSpan   *int `json:"lane_change_scan_span,omitempty"`

	// Heading-based turn detection
	TurnMinHistory         *int     `json:"turn_min_history,omitempty"`
	HeadingLookback        *int     `json:"heading_lookback,omitempty"`
	HeadingChangeThreshold *float64 `json:"heading_change_threshold,omitempty"` // degrees
	IntersectionProximity  *float64 `json:"intersection_proximity,omitempty"`   // metres

	// Speed regimes (units of the supplied kinematics, m/s and m/s²)
	MovingSpeedThreshold *float64 `json:"moving_speed_threshold,omitempty"`
	StoppedSpeedMax      *float64 `json:"stopped_speed_max,omitempty"`
	SlowSpeedMax         *float64 `json:"slow_speed_max,omitempty"`
	NormalSpeedMax       *float64 `json:"normal_speed_max,omitempty"`
	AccelerationBand     *float64 `json:"acceleration_band,omitempty"`

	// Batch processing
	Workers *int `json:"workers,omitempty"` // 0 means derive from GOMAXPROCS
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTaggingConfig returns a TaggingConfig with all fields unset.
func EmptyTaggingConfig() *TaggingConfig {
	return &TaggingConfig{}
}

// LoadTaggingConfig loads a TaggingConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadTaggingConfig(path string) (*TaggingConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTaggingConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repo root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TaggingConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/storage/sqlite/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTaggingConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are usable.
func (c *TaggingConfig) Validate() error {
	positive := []struct {
		name string
		v    *int
	}{
		{"stable_min_frames", c.StableMinFrames},
		{"slide_step", c.SlideStep},
		{"history_capacity", c.HistoryCapacity},
		{"lane_change_lookback", c.LaneChangeLookback},
		{"lane_change_stable_run", c.LaneChangeStableRun},
		{"lane_change_scan_span", c.LaneChangeScanSpan},
		{"heading_lookback", c.HeadingLookback},
	}
	for _, p := range positive {
		if p.v != nil && *p.v < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", p.name, *p.v)
		}
	}

	for i, ws := range c.WindowSizes {
		if ws < 1 {
			return fmt.Errorf("window_sizes[%d] must be at least 1, got %d", i, ws)
		}
	}

	if c.TargetTag != nil {
		switch *c.TargetTag {
		case "left", "right", "straight":
		default:
			return fmt.Errorf("target_tag must be one of left, right, straight; got %q", *c.TargetTag)
		}
	}

	if c.LaneChangeStableRun != nil && c.LaneChangeScanSpan != nil &&
		*c.LaneChangeStableRun > *c.LaneChangeScanSpan {
		return fmt.Errorf("lane_change_stable_run (%d) cannot exceed lane_change_scan_span (%d)",
			*c.LaneChangeStableRun, *c.LaneChangeScanSpan)
	}

	nonNegative := []struct {
		name string
		v    *float64
	}{
		{"heading_change_threshold", c.HeadingChangeThreshold},
		{"intersection_proximity", c.IntersectionProximity},
		{"moving_speed_threshold", c.MovingSpeedThreshold},
		{"acceleration_band", c.AccelerationBand},
	}
	for _, p := range nonNegative {
		if p.v != nil && *p.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", p.name, *p.v)
		}
	}

	stopped, slow, normal := c.GetStoppedSpeedMax(), c.GetSlowSpeedMax(), c.GetNormalSpeedMax()
	if !(stopped <= slow && slow <= normal) {
		return fmt.Errorf("speed bands must be ordered: stopped %.2f <= slow %.2f <= normal %.2f", stopped, slow, normal)
	}

	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}

	return nil
}

// GetStableMinFrames returns the stable_min_frames value or the default.
func (c *TaggingConfig) GetStableMinFrames() int {
	if c.StableMinFrames == nil {
		return 6
	}
	return *c.StableMinFrames
}

// GetWindowSizes returns the window sizes to try in order, or the default.
func (c *TaggingConfig) GetWindowSizes() []int {
	if len(c.WindowSizes) == 0 {
		return []int{330, 450}
	}
	out := make([]int, len(c.WindowSizes))
	copy(out, c.WindowSizes)
	return out
}

// GetSlideStep returns the slide_step value or the default.
func (c *TaggingConfig) GetSlideStep() int {
	if c.SlideStep == nil {
		return 30
	}
	return *c.SlideStep
}

// GetTargetTag returns the target_tag value or the default.
func (c *TaggingConfig) GetTargetTag() string {
	if c.TargetTag == nil {
		return "right"
	}
	return *c.TargetTag
}

// GetHistoryCapacity returns the history_capacity value or the default.
func (c *TaggingConfig) GetHistoryCapacity() int {
	if c.HistoryCapacity == nil {
		return 500
	}
	return *c.HistoryCapacity
}

// GetLaneChangeMinHistory returns the lane_change_min_history value or the default.
func (c *TaggingConfig) GetLaneChangeMinHistory() int {
	if c.LaneChangeMinHistory == nil {
		return 10
	}
	return *c.LaneChangeMinHistory
}

// GetLaneChangeLookback returns the lane_change_lookback value or the default.
func (c *TaggingConfig) GetLaneChangeLookback() int {
	if c.LaneChangeLookback == nil {
		return 60
	}
	return *c.LaneChangeLookback
}

// GetLaneChangeMinValid returns the lane_change_min_valid value or the default.
func (c *TaggingConfig) GetLaneChangeMinValid() int {
	if c.LaneChangeMinValid == nil {
		return 10
	}
	return *c.LaneChangeMinValid
}

// GetLaneChangeStableRun returns the lane_change_stable_run value or the default.
func (c *TaggingConfig) GetLaneChangeStableRun() int {
	if c.LaneChangeStableRun == nil {
		return 3
	}
	return *c.LaneChangeStableRun
}

// GetLaneChangeScanSpan returns the lane_change_scan_span value or the default.
func (c *TaggingConfig) GetLaneChangeScanSpan() int {
	if c.LaneChangeScanSpan == nil {
		return 5
	}
	return *c.LaneChangeScanSpan
}

// GetTurnMinHistory returns the turn_min_history value or the default.
func (c *TaggingConfig) GetTurnMinHistory() int {
	if c.TurnMinHistory == nil {
		return 10
	}
	return *c.TurnMinHistory
}

// GetHeadingLookback returns the heading_lookback value or the default.
func (c *TaggingConfig) GetHeadingLookback() int {
	if c.HeadingLookback == nil {
		return 100
	}
	return *c.HeadingLookback
}

// GetHeadingChangeThreshold returns the heading_change_threshold value or the default.
func (c *TaggingConfig) GetHeadingChangeThreshold() float64 {
	if c.HeadingChangeThreshold == nil {
		return 7.0
	}
	return *c.HeadingChangeThreshold
}

// GetIntersectionProximity returns the intersection_proximity value or the default.
func (c *TaggingConfig) GetIntersectionProximity() float64 {
	if c.IntersectionProximity == nil {
		return 3.0
	}
	return *c.IntersectionProximity
}

// GetMovingSpeedThreshold returns the moving_speed_threshold value or the default.
func (c *TaggingConfig) GetMovingSpeedThreshold() float64 {
	if c.MovingSpeedThreshold == nil {
		return 0.5
	}
	return *c.MovingSpeedThreshold
}

// GetStoppedSpeedMax returns the stopped_speed_max value or the default.
func (c *TaggingConfig) GetStoppedSpeedMax() float64 {
	if c.StoppedSpeedMax == nil {
		return 0.5
	}
	return *c.StoppedSpeedMax
}

// GetSlowSpeedMax returns the slow_speed_max value or the default.
func (c *TaggingConfig) GetSlowSpeedMax() float64 {
	if c.SlowSpeedMax == nil {
		return 2.0
	}
	return *c.SlowSpeedMax
}

// GetNormalSpeedMax returns the normal_speed_max value or the default.
func (c *TaggingConfig) GetNormalSpeedMax() float64 {
	if c.NormalSpeedMax == nil {
		return 8.0
	}
	return *c.NormalSpeedMax
}

// GetAccelerationBand returns the acceleration_band value or the default.
func (c *TaggingConfig) GetAccelerationBand() float64 {
	if c.AccelerationBand == nil {
		return 1.0
	}
	return *c.AccelerationBand
}

// GetWorkers returns the workers value or the default (0, derive from CPUs).
func (c *TaggingConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}
