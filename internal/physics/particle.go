package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Particle is a hard disk. Mass and radius are fixed at construction; position
// and velocity are mutated every step by the driver.
type Particle struct {
	mass   float64
	radius float64
	pos    r2.Vec
	vel    r2.Vec
	theta  float64
}

func NewParticle(mass, x, y, vx, vy, radius float64) (Particle, error) {
	if !(mass > 0) {
		return Particle{}, fmt.Errorf("%w: got %g", ErrInvalidMass, mass)
	}
	if !(radius > 0) {
		return Particle{}, fmt.Errorf("%w: got %g", ErrInvalidRadius, radius)
	}
	p := Particle{
		mass:   mass,
		radius: radius,
		pos:    r2.Vec{X: x, Y: y},
		vel:    r2.Vec{X: vx, Y: vy},
	}
	p.updateAngle()
	return p, nil
}

func (p *Particle) X() float64      { return p.pos.X }
func (p *Particle) Y() float64      { return p.pos.Y }
func (p *Particle) Pos() r2.Vec     { return p.pos }
func (p *Particle) Vel() r2.Vec     { return p.vel }
func (p *Particle) Mass() float64   { return p.mass }
func (p *Particle) Radius() float64 { return p.radius }

// Angle is the heading of the velocity relative to +x, in radians.
func (p *Particle) Angle() float64 { return p.theta }

func (p *Particle) Speed() float64 { return r2.Norm(p.vel) }

func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.mass * r2.Norm2(p.vel)
}

func (p *Particle) Momentum() r2.Vec { return r2.Scale(p.mass, p.vel) }

func (p *Particle) IsFinite() bool {
	for _, v := range [...]float64{p.pos.X, p.pos.Y, p.vel.X, p.vel.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Advance moves the particle ballistically. dt is expected to be positive.
func (p *Particle) Advance(dt float64) {
	p.pos = r2.Add(p.pos, r2.Scale(dt, p.vel))
}

// Rebound reflects the velocity on every axis where the disk touches a wall
// and records one impulse per reflected axis. x is handled before y, so a
// corner contact records two samples, the second with both components
// already flipped. It returns the number of axes reflected.
func (p *Particle) Rebound(b *Boundary) int {
	hits := 0
	if p.pos.X-b.xmin <= p.radius || b.xmax-p.pos.X <= p.radius {
		p.vel.X = -p.vel.X
		p.updateAngle()
		b.RecordImpulse(p.mass * r2.Norm2(p.vel))
		hits++
	}
	if p.pos.Y-b.ymin <= p.radius || b.ymax-p.pos.Y <= p.radius {
		p.vel.Y = -p.vel.Y
		p.updateAngle()
		b.RecordImpulse(p.mass * r2.Norm2(p.vel))
		hits++
	}
	return hits
}

// Collide exchanges the normal velocity components of two touching disks
// along their line of centers; tangential components are untouched. The
// exchange ignores mass, which is only conservative for equal masses.
// Coincident centers are skipped. Overlap is not corrected.
func Collide(a, b *Particle) bool {
	d := r2.Sub(b.pos, a.pos)
	dist2 := r2.Norm2(d)
	rsum := a.radius + b.radius
	if dist2 > rsum*rsum {
		return false
	}
	dist := math.Sqrt(dist2)
	if dist == 0 {
		return false
	}

	n := r2.Scale(1/dist, d)
	vn1 := r2.Dot(a.vel, n)
	vn2 := r2.Dot(b.vel, n)

	a.vel = r2.Add(a.vel, r2.Scale(vn2-vn1, n))
	b.vel = r2.Add(b.vel, r2.Scale(vn1-vn2, n))

	a.updateAngle()
	b.updateAngle()
	return true
}

func (p *Particle) updateAngle() {
	p.theta = math.Atan2(p.vel.Y, p.vel.X)
}
