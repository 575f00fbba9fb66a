package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyTaggingConfigDefaults(t *testing.T) {
	cfg := EmptyTaggingConfig()

	if cfg.GetStableMinFrames() != 6 {
		t.Errorf("GetStableMinFrames() = %d, want 6", cfg.GetStableMinFrames())
	}
	if got := cfg.GetWindowSizes(); len(got) != 2 || got[0] != 330 || got[1] != 450 {
		t.Errorf("GetWindowSizes() = %v, want [330 450]", got)
	}
	if cfg.GetSlideStep() != 30 {
		t.Errorf("GetSlideStep() = %d, want 30", cfg.GetSlideStep())
	}
	if cfg.GetTargetTag() != "right" {
		t.Errorf("GetTargetTag() = %q, want right", cfg.GetTargetTag())
	}
	if cfg.GetHistoryCapacity() != 500 {
		t.Errorf("GetHistoryCapacity() = %d, want 500", cfg.GetHistoryCapacity())
	}
	if cfg.GetHeadingChangeThreshold() != 7.0 {
		t.Errorf("GetHeadingChangeThreshold() = %f, want 7", cfg.GetHeadingChangeThreshold())
	}
	if cfg.GetIntersectionProximity() != 3.0 {
		t.Errorf("GetIntersectionProximity() = %f, want 3", cfg.GetIntersectionProximity())
	}
	if cfg.GetNormalSpeedMax() != 8.0 {
		t.Errorf("GetNormalSpeedMax() = %f, want 8", cfg.GetNormalSpeedMax())
	}
	if cfg.GetWorkers() != 0 {
		t.Errorf("GetWorkers() = %d, want 0", cfg.GetWorkers())
	}
}

func TestGetWindowSizesReturnsCopy(t *testing.T) {
	cfg := &TaggingConfig{WindowSizes: []int{100, 200}}
	got := cfg.GetWindowSizes()
	got[0] = 1
	assert.Equal(t, 100, cfg.WindowSizes[0])
}

func TestLoadTaggingConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tagging.json")

	testJSON := `{
  "stable_min_frames": 4,
  "window_sizes": [120],
  "slide_step": 10,
  "target_tag": "left",
  "heading_change_threshold": 12.5
}`
	require.NoError(t, os.WriteFile(configPath, []byte(testJSON), 0644))

	cfg, err := LoadTaggingConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.GetStableMinFrames())
	assert.Equal(t, []int{120}, cfg.GetWindowSizes())
	assert.Equal(t, 10, cfg.GetSlideStep())
	assert.Equal(t, "left", cfg.GetTargetTag())
	assert.Equal(t, 12.5, cfg.GetHeadingChangeThreshold())
	// Unset fields keep their defaults.
	assert.Equal(t, 500, cfg.GetHistoryCapacity())
}

func TestLoadTaggingConfigMissing(t *testing.T) {
	_, err := LoadTaggingConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTaggingConfigWrongExtension(t *testing.T) {
	_, err := LoadTaggingConfig("config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".json")
}

func TestLoadTaggingConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	invalidJSON := `{
  "stable_min_frames": "six"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTaggingConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestLoadTaggingConfigRejectsInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad_values.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"slide_step": 0}`), 0644))

	_, err := LoadTaggingConfig(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slide_step")
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, 6, cfg.GetStableMinFrames())
	assert.Equal(t, []int{330, 450}, cfg.GetWindowSizes())
	assert.Equal(t, 0.5, cfg.GetMovingSpeedThreshold())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TaggingConfig
		wantErr bool
	}{
		{
			name:    "empty config is valid",
			cfg:     &TaggingConfig{},
			wantErr: false,
		},
		{
			name:    "zero stable min frames",
			cfg:     &TaggingConfig{StableMinFrames: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "non-positive window size",
			cfg:     &TaggingConfig{WindowSizes: []int{330, 0}},
			wantErr: true,
		},
		{
			name:    "unknown target tag",
			cfg:     &TaggingConfig{TargetTag: ptrString("u-turn")},
			wantErr: true,
		},
		{
			name:    "straight target tag",
			cfg:     &TaggingConfig{TargetTag: ptrString("straight")},
			wantErr: false,
		},
		{
			name: "stable run longer than scan span",
			cfg: &TaggingConfig{
				LaneChangeStableRun: ptrInt(6),
				LaneChangeScanSpan:  ptrInt(5),
			},
			wantErr: true,
		},
		{
			name:    "negative heading threshold",
			cfg:     &TaggingConfig{HeadingChangeThreshold: ptrFloat64(-1)},
			wantErr: true,
		},
		{
			name:    "unordered speed bands",
			cfg:     &TaggingConfig{SlowSpeedMax: ptrFloat64(10)},
			wantErr: true,
		},
		{
			name:    "negative workers",
			cfg:     &TaggingConfig{Workers: ptrInt(-2)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
