package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run      RunMetadata `json:"run"`
	Times    []float64   `json:"times"`
	Pressure []float64   `json:"pressure"`
	Energy   []float64   `json:"energy"`
}

// ExportJSON writes a run's metadata together with its pressure and energy
// logs as one indented JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, pressure, err := s.LoadPressure(runID)
	if err != nil {
		return err
	}
	_, energy, err := s.LoadEnergy(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:      *meta,
		Times:    times,
		Pressure: pressure,
		Energy:   energy,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
