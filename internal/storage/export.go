package storage

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/rigidsim/internal/sim"
)

// Number is a float64 that encodes NaN and Inf as JSON null, so a run that
// diverged still exports. Null decodes back to NaN.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = Number(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

type ExportData struct {
	Run    RunInfo       `json:"run"`
	Times  []float64     `json:"times"`
	Frames []ExportFrame `json:"frames"`
}

type ExportFrame struct {
	Time   float64      `json:"time"`
	Bodies []ExportBody `json:"bodies"`
}

type ExportBody struct {
	Position    [3]Number `json:"position"`
	Velocity    [3]Number `json:"velocity"`
	Orientation [4]Number `json:"orientation"`
	Finite      bool      `json:"finite"`
}

func exportFrames(frames []sim.Frame) ([]float64, []ExportFrame) {
	times := make([]float64, len(frames))
	out := make([]ExportFrame, len(frames))
	for i, f := range frames {
		times[i] = f.Time
		out[i] = ExportFrame{Time: f.Time, Bodies: make([]ExportBody, len(f.Bodies))}
		for j, b := range f.Bodies {
			p, v, q := b.Position, b.Velocity, b.Orientation
			out[i].Bodies[j] = ExportBody{
				Position:    [3]Number{Number(p.X), Number(p.Y), Number(p.Z)},
				Velocity:    [3]Number{Number(v.X), Number(v.Y), Number(v.Z)},
				Orientation: [4]Number{Number(q.W), Number(q.X), Number(q.Y), Number(q.Z)},
				Finite:      p.IsFinite() && v.IsFinite() && q.IsFinite(),
			}
		}
	}
	return times, out
}

// WriteJSON encodes a run and its frames to w.
func WriteJSON(w io.Writer, info RunInfo, frames []sim.Frame) error {
	data := ExportData{Run: info}
	data.Times, data.Frames = exportFrames(frames)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes a stored run as JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	info, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	return WriteJSON(w, *info, frames)
}
