package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var statesHeader = []string{"time", "body", "px", "py", "pz", "vx", "vy", "vz", "qw", "qx", "qy", "qz"}

var ErrMalformed = errors.New("malformed states file")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo is written to metadata.json. Save fills ID, Timestamp and the
// counts; the caller supplies the rest.
type RunInfo struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Backend    string             `json:"backend,omitempty"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Gravity    [3]float64         `json:"gravity"`
	Bodies     int                `json:"bodies"`
	Frames     int                `json:"frames"`
	StepsTaken int                `json:"steps_taken"`
	Metrics    map[string]Number  `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	if info.Scenario == "" {
		info.Scenario = "run"
	}
	now := time.Now()
	runID, runDir, err := s.newRunDir(info.Scenario, now)
	if err != nil {
		return "", err
	}

	info.ID = runID
	info.Timestamp = now
	info.Frames = len(result.Frames)
	info.StepsTaken = result.StepsTaken
	info.Metrics = make(map[string]Number, len(result.Metrics))
	for name, v := range result.Metrics {
		info.Metrics[name] = Number(v)
	}
	if len(result.Frames) > 0 {
		info.Bodies = len(result.Frames[0].Bodies)
	}
	for _, e := range result.Errors {
		info.Errors = append(info.Errors, e.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), info); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writeFrames(w, result.Frames); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) newRunDir(scenario string, now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", scenario, now.Unix())
	for n := 0; ; n++ {
		id := base
		if n > 0 {
			id = fmt.Sprintf("%s-%d", base, n)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeFrames(w *csv.Writer, frames []sim.Frame) error {
	if err := w.Write(statesHeader); err != nil {
		return err
	}

	row := make([]string, len(statesHeader))
	for _, f := range frames {
		row[0] = formatFloat(f.Time)
		for i, b := range f.Bodies {
			row[1] = strconv.Itoa(i)
			row[2], row[3], row[4] = formatFloat(b.Position.X), formatFloat(b.Position.Y), formatFloat(b.Position.Z)
			row[5], row[6], row[7] = formatFloat(b.Velocity.X), formatFloat(b.Velocity.Y), formatFloat(b.Velocity.Z)
			q := b.Orientation
			row[8], row[9], row[10], row[11] = formatFloat(q.W), formatFloat(q.X), formatFloat(q.Y), formatFloat(q.Z)
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunInfo, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunInfo{}, nil
		}
		return nil, err
	}

	runs := make([]RunInfo, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *info)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunInfo, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var info RunInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &info, nil
}

// Latest returns the ID of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs in %s", s.baseDir)
	}
	return runs[len(runs)-1].ID, nil
}

// LoadFrames reads states.csv back into frames. Rows belong to the same frame
// while the time column is unchanged. Active flags are not stored; every
// loaded body is reported active.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readFrames(file)
}

func readFrames(r io.Reader) ([]sim.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(statesHeader)

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return []sim.Frame{}, nil
		}
		return nil, err
	}

	frames := make([]sim.Frame, 0)
	var vals [10]float64
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: time: %v", ErrMalformed, line, err)
		}
		body, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: body: %v", ErrMalformed, line, err)
		}
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(record[j+2], 64); err != nil {
				return nil, fmt.Errorf("%w: line %d: %s: %v", ErrMalformed, line, statesHeader[j+2], err)
			}
		}

		if len(frames) == 0 || frames[len(frames)-1].Time != t {
			frames = append(frames, sim.Frame{Time: t})
		}
		f := &frames[len(frames)-1]
		if body != len(f.Bodies) {
			return nil, fmt.Errorf("%w: line %d: body %d out of order", ErrMalformed, line, body)
		}
		f.Bodies = append(f.Bodies, sim.BodyState{
			Position:    vecmath.V3(vals[0], vals[1], vals[2]),
			Velocity:    vecmath.V3(vals[3], vals[4], vals[5]),
			Orientation: vecmath.Quat{W: vals[6], X: vals[7], Y: vals[8], Z: vals[9]},
			Active:      true,
		})
	}

	return frames, nil
}
