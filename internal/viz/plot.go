package viz

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/storage"
)

// angular columns are stored in radians and plotted in degrees
var degreeColumns = map[string]bool{
	"roll": true, "pitch": true, "yaw": true,
	"p": true, "q": true, "r": true,
}

// PlotColumn charts one column of a stored episode.
func PlotColumn(traj *storage.Trajectory, column string, height, width int) (string, error) {
	data := traj.Column(column)
	if data == nil {
		return "", fmt.Errorf("viz: no column %q", column)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("viz: column %q is empty", column)
	}

	caption := column
	if degreeColumns[column] {
		deg := make([]float64, len(data))
		for i, v := range data {
			deg[i] = dynamo.RadToDeg(v)
		}
		data = deg
		caption += " (deg)"
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}

// PlotEpisode writes one chart per column.
func PlotEpisode(w io.Writer, traj *storage.Trajectory, columns []string, height, width int) error {
	for _, col := range columns {
		graph, err := PlotColumn(traj, col, height, width)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n\n", graph); err != nil {
			return err
		}
	}
	return nil
}
