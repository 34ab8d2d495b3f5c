package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/sim"
)

// Columns is the header of every episode file.
var Columns = []string{
	"step", "time",
	"x", "y", "z",
	"roll", "pitch", "yaw",
	"vx", "vy", "vz",
	"p", "q", "r",
	"a0", "a1", "a2", "a3",
	"d0", "d1", "d2",
	"reward", "done",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type EpisodeSummary struct {
	Seed      uint64             `json:"seed"`
	Steps     int                `json:"steps"`
	Return    float64            `json:"return"`
	Truncated bool               `json:"truncated"`
	Reason    string             `json:"reason,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

type RunMetadata struct {
	ID               string           `json:"id"`
	Env              string           `json:"env"`
	Timestamp        time.Time        `json:"timestamp"`
	Seed             uint64           `json:"seed"`
	Policy           string           `json:"policy"`
	Integrator       string           `json:"integrator"`
	Disturbance      string           `json:"disturbance"`
	SimFrequency     float64          `json:"sim_frequency"`
	ControlFrequency float64          `json:"control_frequency"`
	Episodes         []EpisodeSummary `json:"episodes"`
}

// NewRunID returns a sortable, collision-free run identifier.
func NewRunID(now time.Time) string {
	return fmt.Sprintf("%s-%s", now.UTC().Format("20060102-150405"), uuid.NewString()[:8])
}

// Save writes the metadata and one csv file per recorded episode. meta.ID
// and meta.Episodes are filled in.
func (s *Store) Save(meta RunMetadata, results []*sim.Result) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = NewRunID(meta.Timestamp)
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.Episodes = make([]EpisodeSummary, len(results))
	for i, r := range results {
		meta.Episodes[i] = EpisodeSummary{
			Seed:      r.Seed,
			Steps:     r.Steps,
			Return:    r.Return,
			Truncated: r.Truncated,
			Reason:    string(r.Reason),
			Metrics:   r.Metrics,
		}
		if len(r.Transitions) == 0 {
			continue
		}
		if err := writeEpisode(filepath.Join(runDir, episodeFile(i)), r.Transitions); err != nil {
			return "", fmt.Errorf("storage: episode %d: %w", i, err)
		}
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func episodeFile(i int) string {
	return fmt.Sprintf("episode_%03d.csv", i)
}

func writeEpisode(path string, transitions []dynamo.Transition) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return err
	}
	for _, tr := range transitions {
		if err := w.Write(row(tr)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func row(tr dynamo.Transition) []string {
	s := tr.State
	roll, pitch, yaw := s.RPY()
	vals := []float64{
		s.Position.X, s.Position.Y, s.Position.Z,
		roll, pitch, yaw,
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z,
		s.AngularVelocity.X, s.AngularVelocity.Y, s.AngularVelocity.Z,
	}
	a := make([]float64, 4)
	copy(a, tr.Action)
	vals = append(vals, a...)
	vals = append(vals, tr.Disturbance[:]...)
	vals = append(vals, tr.Reward)

	out := make([]string, 0, len(Columns))
	out = append(out, strconv.Itoa(tr.Step), strconv.FormatFloat(tr.Time, 'f', 6, 64))
	for _, v := range vals {
		out = append(out, strconv.FormatFloat(v, 'g', 10, 64))
	}
	return append(out, strconv.FormatBool(tr.Done))
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Trajectory is a loaded episode file.
type Trajectory struct {
	Columns []string
	Rows    [][]float64
}

// Column returns one named series, or nil when the column is absent.
func (t *Trajectory) Column(name string) []float64 {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		if idx < len(r) {
			out = append(out, r[idx])
		}
	}
	return out
}

// LoadEpisode reads episode ep of a run. Booleans load as 0 or 1.
func (s *Store) LoadEpisode(runID string, ep int) (*Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, episodeFile(ep)))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Trajectory{}, nil
	}

	traj := &Trajectory{
		Columns: records[0],
		Rows:    make([][]float64, 0, len(records)-1),
	}
	for _, record := range records[1:] {
		vals := make([]float64, 0, len(record))
		for _, field := range record {
			vals = append(vals, parseField(field))
		}
		traj.Rows = append(traj.Rows, vals)
	}
	return traj, nil
}

func parseField(s string) float64 {
	if b, err := strconv.ParseBool(s); err == nil {
		if b {
			return 1
		}
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
