package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/velocity.tags/internal/tagging"
	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("tag run not found")

// TagRun describes one batch tagging invocation.
type TagRun struct {
	RunID      string          `json:"run_id"`
	CreatedAt  int64           `json:"created_at"` // unix nanos
	Source     string          `json:"source"`     // input file the tracks came from
	TargetTag  string          `json:"target_tag"`
	ConfigJSON json.RawMessage `json:"config_json,omitempty"`
	TrackCount int             `json:"track_count"`
}

// FrameRef identifies one (track, frame) pair.
type FrameRef struct {
	TrackID int `json:"track_id"`
	Frame   int `json:"frame"`
}

// TagStore provides persistence for tagging runs.
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new TagStore over a migrated database.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// CreateRun inserts a run. If RunID is empty, a UUID is generated.
func (s *TagStore) CreateRun(run *TagRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var configStr interface{}
	if len(run.ConfigJSON) > 0 {
		configStr = string(run.ConfigJSON)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO tag_runs (run_id, created_at, source, target_tag, config_json, track_count)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.RunID, run.CreatedAt, run.Source, run.TargetTag, configStr, run.TrackCount,
		)
		if err != nil {
			return fmt.Errorf("insert tag run: %w", err)
		}
		return nil
	})
}

// GetRun returns a run by id.
func (s *TagStore) GetRun(runID string) (*TagRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, created_at, source, target_tag, config_json, track_count
		FROM tag_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run, newest first.
func (s *TagStore) ListRuns() ([]*TagRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, created_at, source, target_tag, config_json, track_count
		FROM tag_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tag runs: %w", err)
	}
	defer rows.Close()

	var runs []*TagRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*TagRun, error) {
	var (
		run       TagRun
		configStr sql.NullString
	)
	if err := row.Scan(&run.RunID, &run.CreatedAt, &run.Source, &run.TargetTag, &configStr, &run.TrackCount); err != nil {
		return nil, err
	}
	if configStr.Valid {
		run.ConfigJSON = json.RawMessage(configStr.String)
	}
	return &run, nil
}

// DeleteRun removes a run and, by cascade, everything recorded under it.
func (s *TagStore) DeleteRun(runID string) error {
	return retryOnBusy(func() error {
		res, err := s.db.Exec(`DELETE FROM tag_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete tag run: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil
	})
}

// SaveTrackResult stores one track's verdicts and frame tags under a run
// in a single transaction and bumps the run's track count. A result
// carrying Err is recorded in track_errors instead.
func (s *TagStore) SaveTrackResult(runID string, res tagging.TrackResult) error {
	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		if err := saveTrack(tx, runID, res); err != nil {
			return err
		}

		upd, err := tx.Exec(`UPDATE tag_runs SET track_count = track_count + 1 WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("update track count: %w", err)
		}
		if n, _ := upd.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return tx.Commit()
	})
}

func saveTrack(tx *sql.Tx, runID string, res tagging.TrackResult) error {
	if res.Err != nil {
		if _, err := tx.Exec(`INSERT INTO track_errors (run_id, track_id, message) VALUES (?, ?, ?)`,
			runID, res.TrackID, res.Err.Error()); err != nil {
			return fmt.Errorf("insert track error %d: %w", res.TrackID, err)
		}
		return nil
	}

	verdictStmt, err := tx.Prepare(`
		INSERT INTO window_verdicts (
			run_id, track_id, window_size, start_frame, end_frame,
			start_zone, end_zone, turn_tag, matched
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare verdict insert: %w", err)
	}
	defer verdictStmt.Close()

	for _, v := range res.Verdicts {
		if _, err := verdictStmt.Exec(runID, res.TrackID, res.WindowSize, v.StartFrame, v.EndFrame,
			v.StartZone, v.EndZone, string(v.TurnTag), v.Matched); err != nil {
			return fmt.Errorf("insert verdict %d/%d: %w", res.TrackID, v.StartFrame, err)
		}
	}

	frameStmt, err := tx.Prepare(`
		INSERT INTO frame_tags (run_id, track_id, frame, action_tags, speed_tags)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare frame insert: %w", err)
	}
	defer frameStmt.Close()

	for _, ft := range res.Frames {
		actions, err := encodeTags(ft.ActionTags)
		if err != nil {
			return err
		}
		speeds, err := encodeTags(ft.SpeedTags)
		if err != nil {
			return err
		}
		if _, err := frameStmt.Exec(runID, ft.TrackID, ft.Frame, actions, speeds); err != nil {
			return fmt.Errorf("insert frame tags %d/%d: %w", ft.TrackID, ft.Frame, err)
		}
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// ListFrameTags returns a track's frame records ordered by frame.
func (s *TagStore) ListFrameTags(runID string, trackID int) ([]tagging.FrameTags, error) {
	rows, err := s.db.Query(`
		SELECT track_id, frame, action_tags, speed_tags
		FROM frame_tags WHERE run_id = ? AND track_id = ?
		ORDER BY frame`, runID, trackID)
	if err != nil {
		return nil, fmt.Errorf("list frame tags: %w", err)
	}
	defer rows.Close()

	var out []tagging.FrameTags
	for rows.Next() {
		var (
			ft              tagging.FrameTags
			actions, speeds string
		)
		if err := rows.Scan(&ft.TrackID, &ft.Frame, &actions, &speeds); err != nil {
			return nil, fmt.Errorf("scan frame tags: %w", err)
		}
		if err := json.Unmarshal([]byte(actions), &ft.ActionTags); err != nil {
			return nil, fmt.Errorf("decode action tags: %w", err)
		}
		if err := json.Unmarshal([]byte(speeds), &ft.SpeedTags); err != nil {
			return nil, fmt.Errorf("decode speed tags: %w", err)
		}
		out = append(out, ft)
	}
	return out, rows.Err()
}

// ListVerdicts returns a track's window verdicts ordered by start frame.
func (s *TagStore) ListVerdicts(runID string, trackID int) ([]tagging.WindowVerdict, error) {
	rows, err := s.db.Query(`
		SELECT start_frame, end_frame, start_zone, end_zone, turn_tag, matched
		FROM window_verdicts WHERE run_id = ? AND track_id = ?
		ORDER BY start_frame`, runID, trackID)
	if err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()

	var out []tagging.WindowVerdict
	for rows.Next() {
		var (
			v   tagging.WindowVerdict
			tag string
		)
		if err := rows.Scan(&v.StartFrame, &v.EndFrame, &v.StartZone, &v.EndZone, &tag, &v.Matched); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		v.TurnTag = tagging.TurnTag(tag)
		out = append(out, v)
	}
	return out, rows.Err()
}

// FramesWithTag returns every (track, frame) in a run whose action or
// speed tags contain tag, ordered by track then frame.
func (s *TagStore) FramesWithTag(runID, tag string) ([]FrameRef, error) {
	rows, err := s.db.Query(`
		SELECT f.track_id, f.frame
		FROM frame_tags f
		WHERE f.run_id = ?
		  AND (EXISTS (SELECT 1 FROM json_each(f.action_tags) WHERE value = ?)
		    OR EXISTS (SELECT 1 FROM json_each(f.speed_tags) WHERE value = ?))
		ORDER BY f.track_id, f.frame`, runID, tag, tag)
	if err != nil {
		return nil, fmt.Errorf("query frames with tag %q: %w", tag, err)
	}
	defer rows.Close()

	var out []FrameRef
	for rows.Next() {
		var ref FrameRef
		if err := rows.Scan(&ref.TrackID, &ref.Frame); err != nil {
			return nil, fmt.Errorf("scan frame ref: %w", err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// TrackErrors returns the failure message of every skipped track in a run.
func (s *TagStore) TrackErrors(runID string) (map[int]string, error) {
	rows, err := s.db.Query(`SELECT track_id, message FROM track_errors WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("list track errors: %w", err)
	}
	defer rows.Close()

	out := make(map[int]string)
	for rows.Next() {
		var (
			id  int
			msg string
		)
		if err := rows.Scan(&id, &msg); err != nil {
			return nil, fmt.Errorf("scan track error: %w", err)
		}
		out[id] = msg
	}
	return out, rows.Err()
}
