package tagging

// SpeedTags classifies a point's planar speed and longitudinal
// acceleration. The result always has two tags: a speed regime followed
// by an acceleration regime.
func SpeedTags(p TrajectoryPoint, cfg Config) []string {
	tags := make([]string, 0, 2)

	speed := p.Speed()
	switch {
	case speed < cfg.StoppedSpeedMax:
		tags = append(tags, TagStopped)
	case speed < cfg.SlowSpeedMax:
		tags = append(tags, TagSlow)
	case speed < cfg.NormalSpeedMax:
		tags = append(tags, TagNormal)
	default:
		tags = append(tags, TagFast)
	}

	switch {
	case p.LonAcceleration > cfg.AccelerationBand:
		tags = append(tags, TagAccelerating)
	case p.LonAcceleration < -cfg.AccelerationBand:
		tags = append(tags, TagDecelerating)
	default:
		tags = append(tags, TagConstantSpeed)
	}
	return tags
}
