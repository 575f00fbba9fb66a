// Package zones turns lane-level map geometry into named spatial zones and
// answers point-location queries against them.
//
// A zone is a lane group ("RI_-1": road group RI, signed lane index -1) or
// an intersection ("INT_1"). Each zone owns one or more closed polygon rings
// built from the union of its member lanelets or drivable areas.
//
// Responsibilities:
//   - Builder: membership table + hdmap.Map → immutable Table
//   - Locator: ZoneOf and DistanceToNearestIntersection over a Table
//   - Memo: process-wide build-once holder for a Table
//
// A Table is never mutated after construction; every query is a pure read
// and safe for concurrent use without locking.
//
// Dependency rule: zones depends on hdmap and monitoring only. No tagging
// logic and no SQL lives here.
package zones
