// Package storage records flights on disk: one directory per run holding
// metadata.json and telemetry.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/golang/geo/r3"

	"github.com/san-kum/buoy/internal/flight"
	"github.com/san-kum/buoy/internal/metrics"
)

var ErrMalformed = errors.New("storage: malformed telemetry")

const (
	metadataFile  = "metadata.json"
	telemetryFile = "telemetry.csv"
)

var header = []string{
	"time", "body", "x", "y", "z", "vx", "vy", "vz",
	"volume", "radius", "temperature", "pressure", "density",
	"fx", "fy", "fz", "burst", "status",
}

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunInfo is what the caller knows about a run before it is recorded.
type RunInfo struct {
	Preset     string  `json:"preset"`
	Integrator string  `json:"integrator"`
	Policy     string  `json:"policy"`
	Dt         float64 `json:"dt"`
	Duration   float64 `json:"duration"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Policy     string             `json:"policy"`
	Bodies     []BodyInfo         `json:"bodies"`
	Steps      int                `json:"steps"`
	Faults     int                `json:"faults"`
	Metrics    map[string]float64 `json:"metrics"`
}

type BodyInfo struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	Burst         bool    `json:"burst"`
	BurstCause    string  `json:"burst_cause,omitempty"`
	BurstTime     float64 `json:"burst_time,omitempty"`
	BurstAltitude float64 `json:"burst_altitude,omitempty"`
}

func (s *Store) Save(info RunInfo, result *flight.Result) (string, error) {
	name := info.Preset
	if name == "" {
		name = "flight"
	}
	now := s.now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Preset:     info.Preset,
		Timestamp:  now,
		Dt:         info.Dt,
		Duration:   info.Duration,
		Integrator: info.Integrator,
		Policy:     info.Policy,
		Steps:      result.StepsTaken,
		Faults:     len(result.Faults),
		Metrics:    finite(result.Metrics),
	}
	for _, b := range result.Bodies {
		bi := BodyInfo{ID: b.ID, Name: b.Name, Status: b.Status.String(), Burst: b.Envelope.Burst}
		if b.Envelope.Burst {
			bi.BurstCause = b.Envelope.Cause.String()
			bi.BurstTime = b.BurstTime
			bi.BurstAltitude = b.BurstAltitude
		}
		meta.Bodies = append(meta.Bodies, bi)
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTelemetry(filepath.Join(runDir, telemetryFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

// finite drops values JSON cannot carry, such as the burst altitude of a
// flight where nothing burst.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTelemetry(path string, result *flight.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, track := range result.Tracks {
		for _, s := range track {
			if err := w.Write(row(s)); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func row(s flight.Sample) []string {
	vals := []float64{
		s.Time, float64(s.Body),
		s.Position.X, s.Position.Y, s.Position.Z,
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z,
		s.Volume, s.Radius, s.Temperature, s.Pressure, s.Density,
		s.NetForce.X, s.NetForce.Y, s.NetForce.Z,
	}
	out := make([]string, 0, len(header))
	for _, v := range vals {
		out = append(out, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return append(out, strconv.FormatBool(s.Burst), s.Status.String())
}

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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTracks reads a run's telemetry back, one track per body in body order.
func (s *Store) LoadTracks(runID string) ([][]flight.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, telemetryFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(records) < 2 {
		return [][]flight.Sample{}, nil
	}

	byBody := make(map[int][]flight.Sample)
	for i, rec := range records[1:] {
		smp, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, i+2, err)
		}
		byBody[smp.Body] = append(byBody[smp.Body], smp)
	}

	ids := make([]int, 0, len(byBody))
	for id := range byBody {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	tracks := make([][]flight.Sample, len(ids))
	for i, id := range ids {
		tracks[i] = byBody[id]
	}
	return tracks, nil
}

func parseRow(rec []string) (flight.Sample, error) {
	vals := make([]float64, 16)
	for i := range vals {
		v, err := strconv.ParseFloat(rec[i], 64)
		if err != nil {
			return flight.Sample{}, fmt.Errorf("%s: %w", header[i], err)
		}
		vals[i] = v
	}
	burst, err := strconv.ParseBool(rec[16])
	if err != nil {
		return flight.Sample{}, fmt.Errorf("burst: %w", err)
	}
	status, ok := flight.ParseStatus(rec[17])
	if !ok {
		return flight.Sample{}, fmt.Errorf("status: unknown %q", rec[17])
	}
	return flight.Sample{
		Time:        vals[0],
		Body:        int(vals[1]),
		Position:    r3.Vector{X: vals[2], Y: vals[3], Z: vals[4]},
		Velocity:    r3.Vector{X: vals[5], Y: vals[6], Z: vals[7]},
		Volume:      vals[8],
		Radius:      vals[9],
		Temperature: vals[10],
		Pressure:    vals[11],
		Density:     vals[12],
		NetForce:    r3.Vector{X: vals[13], Y: vals[14], Z: vals[15]},
		Burst:       burst,
		Status:      status,
	}, nil
}

// Summaries reloads a run and summarizes each track.
func (s *Store) Summaries(runID string) ([]metrics.Summary, error) {
	tracks, err := s.LoadTracks(runID)
	if err != nil {
		return nil, err
	}
	out := make([]metrics.Summary, 0, len(tracks))
	for _, t := range tracks {
		sum, err := metrics.Summarize(t)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}
