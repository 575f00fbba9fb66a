// Package tagging labels vehicle trajectories frame by frame.
//
// Responsibilities:
//   - Stable-zone tracking: first and last zone a point sequence settles in.
//   - Turn classification from (entry, exit) road-group pairs.
//   - Sliding-window matching over a trajectory, one verdict per window.
//   - Frame tagging: kinematic, lane-change, heading-turn and window tags,
//     deduplicated and conflict-resolved, plus speed-regime tags.
//   - Batch tagging of many tracks on a bounded worker pool.
//
// Zone geometry is consumed through the ZoneLocator interface, normally a
// *zones.Locator over a table built once per process. Every function here
// is a pure computation over its inputs; the only mutable state is the
// per-track history owned by a single TagFrames call.
//
// Dependency rule: tagging may import internal/zones and internal/config,
// never storage or I/O packages.
package tagging
