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

	"github.com/san-kum/diskbox/internal/sim"
)

const metadataFile = "metadata.json"

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	Side          float64            `json:"side"`
	Particles     int                `json:"particles"`
	Radius        float64            `json:"radius"`
	VMax          float64            `json:"vmax"`
	Mass          float64            `json:"mass"`
	Dt            float64            `json:"dt"`
	Steps         int                `json:"steps"`
	StepsTaken    int                `json:"steps_taken"`
	FinalPressure float64            `json:"final_pressure"`
	EnergyDrift   float64            `json:"energy_drift"`
	Metrics       map[string]float64 `json:"metrics"`
}

// NewRunID names a run after the wall clock and its seed so concurrent runs
// of an ensemble never share a directory.
func (s *Store) NewRunID(seed int64) string {
	return fmt.Sprintf("box_%d_%d", time.Now().Unix(), seed)
}

func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// Create makes the run directory and opens an exporter writing into it.
func (s *Store) Create(runID string) (*Exporter, error) {
	dir := s.RunDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return NewExporter(dir)
}

func (s *Store) SaveMetadata(meta RunMetadata) error {
	metaPath := filepath.Join(s.RunDir(meta.ID), metadataFile)
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// List returns every readable run, oldest first.
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
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadPressure reads the pressure log back as time and pressure columns.
func (s *Store) LoadPressure(runID string) ([]float64, []float64, error) {
	return s.loadSeries(runID, PressureFile)
}

func (s *Store) LoadEnergy(runID string) ([]float64, []float64, error) {
	return s.loadSeries(runID, EnergyFile)
}

// LoadSnapshot reads the last frame written by the run.
func (s *Store) LoadSnapshot(runID string) ([]sim.ParticleState, error) {
	rows, err := readTable(filepath.Join(s.RunDir(runID), SnapshotFile))
	if err != nil {
		return nil, err
	}
	ps := make([]sim.ParticleState, 0, len(rows))
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		ps = append(ps, sim.ParticleState{X: row[0], Y: row[1], Speed: row[2]})
	}
	return ps, nil
}

func (s *Store) LoadSpeeds(runID string) ([]float64, error) {
	rows, err := readTable(filepath.Join(s.RunDir(runID), SpeedsFile))
	if err != nil {
		return nil, err
	}
	speeds := make([]float64, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			speeds = append(speeds, row[0])
		}
	}
	return speeds, nil
}

func (s *Store) loadSeries(runID, name string) ([]float64, []float64, error) {
	rows, err := readTable(filepath.Join(s.RunDir(runID), name))
	if err != nil {
		return nil, nil, err
	}

	times := make([]float64, 0, len(rows))
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		times = append(times, row[0])
		values = append(values, row[1])
	}
	return times, values, nil
}

// readTable parses a headerless tab-separated file of numbers. Fields that do
// not parse are dropped from their row.
func readTable(path string) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, 0, len(records))
	for _, record := range records {
		row := make([]float64, 0, len(record))
		for _, field := range record {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			row = append(row, val)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
