package world

import "time"

// Mover 是狀態機消費的外部移動控制器能力。尋路/轉向內部不在本核心範圍，
// 狀態機只透過這組操作與它互動。
type Mover interface {
	Position() Vec2
	SetDestination(p Vec2)
	SetVelocity(v Vec2)
	Stop()
	Warp(p Vec2)
	IsMoving() bool
	NearestValidDestination(p Vec2) Vec2
}

// Bounds is the rectangular walkable area a SteeringMover clamps into.
type Bounds struct {
	Min, Max Vec2
}

func (b Bounds) Clamp(p Vec2) Vec2 {
	if p.X < b.Min.X {
		p.X = b.Min.X
	}
	if p.X > b.Max.X {
		p.X = b.Max.X
	}
	if p.Y < b.Min.Y {
		p.Y = b.Min.Y
	}
	if p.Y > b.Max.Y {
		p.Y = b.Max.Y
	}
	return p
}

// arriveEpsilon 內視為抵達目的地，避免浮點抖動造成永遠走不到。
const arriveEpsilon = 0.05

// SteeringMover is the built-in Mover: straight-line steering toward a
// destination, or direct velocity control. Advanced once per tick by
// MovementSystem.
type SteeringMover struct {
	pos    Vec2
	dest   Vec2
	vel    Vec2
	speed  float64
	bounds Bounds

	hasDest bool
	hasVel  bool
}

func NewSteeringMover(start Vec2, speed float64, bounds Bounds) *SteeringMover {
	return &SteeringMover{pos: bounds.Clamp(start), speed: speed, bounds: bounds}
}

func (m *SteeringMover) Position() Vec2 { return m.pos }

func (m *SteeringMover) SetDestination(p Vec2) {
	m.dest = m.NearestValidDestination(p)
	m.hasDest = true
	m.hasVel = false
}

func (m *SteeringMover) SetVelocity(v Vec2) {
	m.vel = v
	m.hasVel = !v.IsZero()
	m.hasDest = false
}

func (m *SteeringMover) Stop() {
	m.hasDest = false
	m.hasVel = false
	m.vel = Vec2{}
}

func (m *SteeringMover) Warp(p Vec2) {
	m.Stop()
	m.pos = m.bounds.Clamp(p)
}

func (m *SteeringMover) IsMoving() bool {
	return m.hasDest || m.hasVel
}

func (m *SteeringMover) NearestValidDestination(p Vec2) Vec2 {
	return m.bounds.Clamp(p)
}

// Advance integrates one tick of movement.
func (m *SteeringMover) Advance(dt time.Duration) {
	step := m.speed * dt.Seconds()
	switch {
	case m.hasVel:
		m.pos = m.bounds.Clamp(m.pos.Add(m.vel.Scale(dt.Seconds())))
	case m.hasDest:
		delta := m.dest.Sub(m.pos)
		if delta.Len() <= step+arriveEpsilon {
			m.pos = m.dest
			m.hasDest = false
			return
		}
		m.pos = m.bounds.Clamp(m.pos.Add(delta.Normalized().Scale(step)))
	}
}
