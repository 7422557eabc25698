package physics

import (
	"gas-arena/internal/geom"
	"gas-arena/internal/spatial"
)

const (
	// DefaultMaxTranslation bounds per-step movement; large enough for bullets.
	DefaultMaxTranslation = 12.5
	linearSlop            = 0.005
	baumgarte             = 0.2
)

// Contact is a touching pair. Normal points from A toward B.
type Contact struct {
	A, B   *Body
	Normal geom.Vec2
	Depth  float64
}

// Other returns the body on the other side of the contact.
func (c *Contact) Other(b *Body) *Body {
	if c.A == b {
		return c.B
	}
	return c.A
}

// World is the physics collaborator the simulation depends on.
type World interface {
	CreateBody(def BodyDef) *Body
	DestroyBody(b *Body)
	Step(dt float64)
	OnPreSolve(fn func(c *Contact))
	OnBeginContact(fn func(c *Contact))
	SetFilter(fn func(a, b *Body) bool)
	SetMaxLinearCorrection(v float64)
	MaxLinearCorrection() float64
}

type pairKey struct {
	a, b uint32
}

func keyOf(a, b *Body) pairKey {
	if a.id > b.id {
		a, b = b, a
	}
	return pairKey{a.id, b.id}
}

// Space is the World implementation: damped integration, sweep-and-prune
// broad phase, circle/box narrow phase, and persistent contacts so
// begin-contact fires once per touching pair.
//
// Step order: velocity solve against contacts from the previous step,
// integrate, detect contacts (bullets swept from their previous position
// and stopped at the first hit; begin-contact for new pairs, pre-solve for
// every touching pair), positional correction bounded by
// MaxLinearCorrection.
type Space struct {
	bodies   []*Body
	nextID   uint32
	contacts map[pairKey]*Contact
	touching map[pairKey]*Contact
	order    []*Contact // touching contacts in detection order

	firstHits map[*Body]sweepHit

	sap   *spatial.SweepAndPrune
	boxes []spatial.AABB

	filter     func(a, b *Body) bool
	preSolve   func(c *Contact)
	beginTouch func(c *Contact)

	maxLinearCorrection float64
	maxTranslation      float64
}

var _ World = (*Space)(nil)

// NewSpace creates an empty world sized for roughly maxBodies bodies.
func NewSpace(maxBodies int) *Space {
	return &Space{
		bodies:         make([]*Body, 0, maxBodies),
		contacts:       make(map[pairKey]*Contact),
		touching:       make(map[pairKey]*Contact),
		firstHits:      make(map[*Body]sweepHit),
		sap:            spatial.NewSweepAndPrune(maxBodies),
		boxes:          make([]spatial.AABB, 0, maxBodies),
		maxTranslation: DefaultMaxTranslation,
	}
}

func (s *Space) CreateBody(def BodyDef) *Body {
	b := &Body{
		id:            s.nextID,
		bodyType:      def.Type,
		shape:         def.Shape,
		position:      def.Position,
		previous:      def.Position,
		bullet:        def.Bullet,
		linearDamping: def.LinearDamping,
		tag:           def.Tag,
		userData:      def.UserData,
	}
	s.nextID++
	s.bodies = append(s.bodies, b)
	return b
}

// DestroyBody removes the body and every contact it takes part in.
// Destroying twice is a no-op.
func (s *Space) DestroyBody(b *Body) {
	if b == nil || b.destroyed {
		return
	}
	b.destroyed = true
	for i, other := range s.bodies {
		if other == b {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			break
		}
	}
	for k, c := range s.contacts {
		if c.A == b || c.B == b {
			delete(s.contacts, k)
		}
	}
}

func (s *Space) OnPreSolve(fn func(c *Contact))     { s.preSolve = fn }
func (s *Space) OnBeginContact(fn func(c *Contact)) { s.beginTouch = fn }
func (s *Space) SetFilter(fn func(a, b *Body) bool) { s.filter = fn }

func (s *Space) SetMaxLinearCorrection(v float64) { s.maxLinearCorrection = v }
func (s *Space) MaxLinearCorrection() float64     { return s.maxLinearCorrection }

func (s *Space) SetMaxTranslation(v float64) { s.maxTranslation = v }

// BodyCount returns the number of live bodies.
func (s *Space) BodyCount() int {
	return len(s.bodies)
}

// ContactCount returns the number of touching pairs after the last step.
func (s *Space) ContactCount() int {
	return len(s.contacts)
}

// Step advances the world by dt seconds.
func (s *Space) Step(dt float64) {
	s.solveVelocities()
	s.integrate(dt)
	s.detect()
	s.solvePositions()
}

func (s *Space) solveVelocities() {
	for _, c := range s.order {
		if !responds(c) {
			continue
		}
		invA, invB := c.A.inverseMass(), c.B.inverseMass()
		sum := invA + invB
		if sum == 0 {
			continue
		}
		vn := c.B.velocity.Sub(c.A.velocity).Dot(c.Normal)
		if vn >= 0 {
			continue
		}
		j := -vn / sum
		c.A.velocity = c.A.velocity.Sub(c.Normal.Scale(j * invA))
		c.B.velocity = c.B.velocity.Add(c.Normal.Scale(j * invB))
	}
}

func (s *Space) integrate(dt float64) {
	for _, b := range s.bodies {
		if b.bodyType == Static {
			continue
		}
		if b.linearDamping > 0 {
			b.velocity = b.velocity.Scale(1 / (1 + dt*b.linearDamping))
		}
		translation := b.velocity.Scale(dt)
		if l2 := translation.LengthSquared(); l2 > s.maxTranslation*s.maxTranslation {
			translation = translation.Scale(s.maxTranslation / translation.Length())
		}
		b.previous = b.position
		b.position = b.position.Add(translation)
	}
}

func (s *Space) detect() {
	s.boxes = s.boxes[:0]
	for _, b := range s.bodies {
		s.boxes = append(s.boxes, b.sweptAABB())
	}

	clear(s.touching)
	clear(s.firstHits)
	s.order = s.order[:0]
	for _, p := range s.sap.Update(s.boxes) {
		a, b := s.bodies[p.A], s.bodies[p.B]
		if a.bodyType == Static && b.bodyType == Static {
			continue
		}
		if !a.valid() || !b.valid() {
			continue
		}
		if s.filter != nil && !s.filter(a, b) {
			continue
		}
		if a.bullet != b.bullet {
			s.recordSweep(a, b)
			continue
		}
		if m, ok := collide(a, b); ok {
			s.touch(a, b, m)
		}
	}
	s.resolveSweeps()

	// Contacts that stopped touching end silently.
	for k := range s.contacts {
		if _, ok := s.touching[k]; !ok {
			delete(s.contacts, k)
		}
	}

	for _, c := range s.order {
		if c.A.destroyed || c.B.destroyed {
			continue
		}
		key := keyOf(c.A, c.B)
		if _, existed := s.contacts[key]; !existed {
			s.contacts[key] = c
			if s.beginTouch != nil {
				s.beginTouch(c)
			}
			if c.A.destroyed || c.B.destroyed {
				continue
			}
		}
		if s.preSolve != nil {
			s.preSolve(c)
		}
	}
}

// touch records a touching pair for this step.
func (s *Space) touch(a, b *Body, m manifold) {
	if a.id > b.id {
		a, b = b, a
		m.normal = m.normal.Scale(-1)
	}
	key := pairKey{a.id, b.id}
	c, existed := s.contacts[key]
	if !existed {
		c = &Contact{A: a, B: b}
	}
	c.Normal = m.normal
	c.Depth = m.depth
	s.touching[key] = c
	s.order = append(s.order, c)
}

// recordSweep keeps the earliest hit along a bullet's path this step.
func (s *Space) recordSweep(a, b *Body) {
	bullet, other := a, b
	if b.bullet {
		bullet, other = b, a
	}
	t, ok := sweep(bullet, other)
	if !ok {
		return
	}
	best, seen := s.firstHits[bullet]
	if !seen || t < best.t || (t == best.t && other.id < best.other.id) {
		s.firstHits[bullet] = sweepHit{other: other, t: t}
	}
}

// resolveSweeps moves each bullet back to its first hit and records that
// single contact. Later shapes on the same path are not reported.
func (s *Space) resolveSweeps() {
	for _, b := range s.bodies {
		hit, ok := s.firstHits[b]
		if !ok {
			continue
		}
		if hit.t > 0 {
			b.position = b.previous.Add(b.position.Sub(b.previous).Scale(hit.t))
		}
		m, ok := collide(b, hit.other)
		if !ok {
			m = manifold{normal: b.position.Sub(b.previous).Normalize(), depth: 0}
		}
		s.touch(b, hit.other, m)
	}
}

func (s *Space) solvePositions() {
	for _, c := range s.order {
		if !responds(c) {
			continue
		}
		invA, invB := c.A.inverseMass(), c.B.inverseMass()
		sum := invA + invB
		if sum == 0 {
			continue
		}
		correction := clamp(baumgarte*(c.Depth-linearSlop), 0, s.maxLinearCorrection)
		if correction == 0 {
			continue
		}
		c.A.position = c.A.position.Sub(c.Normal.Scale(correction * invA / sum))
		c.B.position = c.B.position.Add(c.Normal.Scale(correction * invB / sum))
	}
}

func responds(c *Contact) bool {
	return !c.A.bullet && !c.B.bullet && !c.A.destroyed && !c.B.destroyed
}
