package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/diskbox/internal/sim"
)

// File names inside a run directory. All files are tab separated without a
// header so external plotting tools can read them as-is.
const (
	SnapshotFile = "snapshot.dat" // x, y, speed per particle; rewritten every step
	SpeedsFile   = "speeds.dat"   // finite speeds > 0; rewritten every step
	PressureFile = "pressure.dat" // time, mean pressure; one line appended per step
	EnergyFile   = "energy.dat"   // time, kinetic energy; one line appended per step
)

// Exporter writes a run's frames into a directory. It implements sim.Sink.
type Exporter struct {
	dir      string
	pressure *logFile
	energy   *logFile
}

var _ sim.Sink = (*Exporter)(nil)

type logFile struct {
	f *os.File
	w *csv.Writer
}

func openLog(path string) (*logFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &logFile{f: f, w: newTabWriter(f)}, nil
}

func (l *logFile) append(record ...string) error {
	if err := l.w.Write(record); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *logFile) close() error {
	l.w.Flush()
	return errors.Join(l.w.Error(), l.f.Close())
}

// NewExporter creates the run's append-only logs in dir. dir must exist.
func NewExporter(dir string) (*Exporter, error) {
	pressure, err := openLog(filepath.Join(dir, PressureFile))
	if err != nil {
		return nil, fmt.Errorf("open pressure log: %w", err)
	}
	energy, err := openLog(filepath.Join(dir, EnergyFile))
	if err != nil {
		pressure.close()
		return nil, fmt.Errorf("open energy log: %w", err)
	}
	return &Exporter{dir: dir, pressure: pressure, energy: energy}, nil
}

func (e *Exporter) Dir() string { return e.dir }

// WriteFrame truncates and rewrites the snapshot and speeds files.
func (e *Exporter) WriteFrame(f *sim.Frame) error {
	err := writeTable(filepath.Join(e.dir, SnapshotFile), func(w *csv.Writer) error {
		for _, p := range f.Particles {
			if err := w.Write([]string{formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Speed)}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	err = writeTable(filepath.Join(e.dir, SpeedsFile), func(w *csv.Writer) error {
		for _, p := range f.Particles {
			if math.IsNaN(p.Speed) || math.IsInf(p.Speed, 0) || p.Speed <= 0 {
				continue
			}
			if err := w.Write([]string{formatFloat(p.Speed)}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write speeds: %w", err)
	}
	return nil
}

// WriteSummary appends one line to the pressure and energy logs.
func (e *Exporter) WriteSummary(s sim.Summary) error {
	if e.pressure == nil {
		return os.ErrClosed
	}
	t := formatFloat(s.Time)
	if err := e.pressure.append(t, formatFloat(s.Pressure)); err != nil {
		return fmt.Errorf("append pressure: %w", err)
	}
	if err := e.energy.append(t, formatFloat(s.Energy)); err != nil {
		return fmt.Errorf("append energy: %w", err)
	}
	return nil
}

// Close flushes and closes the logs. Calling it again is a no-op.
func (e *Exporter) Close() error {
	if e.pressure == nil {
		return nil
	}
	err := errors.Join(e.pressure.close(), e.energy.close())
	e.pressure, e.energy = nil, nil
	return err
}

func writeTable(path string, rows func(w *csv.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := newTabWriter(f)
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func newTabWriter(f *os.File) *csv.Writer {
	w := csv.NewWriter(f)
	w.Comma = '\t'
	return w
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
