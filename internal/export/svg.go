package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/diskbox/internal/physics"
	"github.com/san-kum/diskbox/internal/sim"
)

// SnapshotSVG draws the box walls and every disk of one frame. Disks are
// shaded from blue (slow) to red (fastest in the frame). width is the image
// width in pixels; the height follows the box aspect ratio.
func SnapshotSVG(box *physics.Boundary, particles []sim.ParticleState, radius float64, width int) string {
	if box == nil || width <= 0 {
		return ""
	}

	scale := float64(width) / box.Width()
	height := int(math.Round(box.Height() * scale))

	maxSpeed := 0.0
	for _, p := range particles {
		if p.Speed > maxSpeed && !math.IsInf(p.Speed, 0) {
			maxSpeed = p.Speed
		}
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a" stroke="#e0e0e0" stroke-width="2"/>
`, width, height, width, height))

	for _, p := range particles {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		cx := (p.X - box.XMin()) * scale
		// SVG y grows downwards.
		cy := (box.YMax() - p.Y) * scale
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, radius*scale, speedColor(p.Speed, maxSpeed)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func speedColor(speed, maxSpeed float64) string {
	t := 0.0
	if maxSpeed > 0 {
		t = math.Min(math.Max(speed/maxSpeed, 0), 1)
	}
	r := int(math.Round(40 + 215*t))
	b := int(math.Round(255 - 215*t))
	return fmt.Sprintf("#%02x%02x%02x", r, 80, b)
}
