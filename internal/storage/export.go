package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Meta    RunMetadata `json:"meta"`
	Episode int         `json:"episode"`
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

// ExportJSON writes one episode of a run, metadata included, as JSON.
func (s *Store) ExportJSON(w io.Writer, runID string, ep int) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	traj, err := s.LoadEpisode(runID, ep)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{
		Meta:    *meta,
		Episode: ep,
		Columns: traj.Columns,
		Rows:    traj.Rows,
	})
}
