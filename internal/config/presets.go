package config

import "sort"

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"dilute": {
		Box: BoxConfig{Side: 20, Particles: 25, Radius: 0.2, Mass: 1, VMax: 1},
		Run: RunConfig{Dt: 0.01, Steps: 1000, Seed: 1, OutDir: DefaultOutDir, ValidateState: true},
	},
	"dense": {
		Box: BoxConfig{Side: 10, Particles: 400, Mass: 1, VMax: 1},
		Run: RunConfig{Dt: 0.005, Steps: 600, Seed: 1, OutDir: DefaultOutDir, ValidateState: true},
	},
	"hot": {
		Box: BoxConfig{Side: 10, Particles: 100, Mass: 1, VMax: 5},
		Run: RunConfig{Dt: 0.002, Steps: 1500, Seed: 1, OutDir: DefaultOutDir, ValidateState: true},
	},
	"single": {
		Box: BoxConfig{Side: 10, Particles: 1, Radius: 0.5, Mass: 1, VMax: 1},
		Run: RunConfig{Dt: 0.01, Steps: 300, Seed: 1, OutDir: DefaultOutDir, ValidateState: true},
	},
}

var PresetInfo = map[string]string{
	"default": "100 disks, suggested radius",
	"dilute":  "25 small disks in a wide box",
	"dense":   "400 disks at 90% pitch",
	"hot":     "fast start, fine step",
	"single":  "one disk bouncing off the walls",
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
