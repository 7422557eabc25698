package game

import (
	"gas-arena/internal/geom"
	"gas-arena/internal/physics"
)

// Loot is a dropped gun lying in the world. Loot bodies push each other
// apart so piles spread out.
type Loot struct {
	id          uint32
	game        *Game
	gunID       string
	body        *physics.Body
	rotation    float64
	oldPosition geom.Vec2
	oldRotation float64
}

func (l *Loot) ID() uint32        { return l.id }
func (l *Loot) Kind() Kind        { return KindLoot }
func (l *Loot) Rotation() float64 { return l.rotation }
func (l *Loot) GunID() string     { return l.gunID }

func (l *Loot) Position() geom.Vec2 {
	if l.body == nil {
		return l.oldPosition
	}
	return l.body.Position()
}

func (l *Loot) Partial() PartialState {
	return PartialState{
		ID:       l.id,
		Kind:     KindLoot,
		Position: l.Position(),
		Rotation: l.rotation,
	}
}

func (l *Loot) Full() FullState {
	return FullState{
		PartialState: l.Partial(),
		Type:         l.gunID,
	}
}

// moved reports a position or rotation change since the last call.
func (l *Loot) moved() bool {
	pos := l.Position()
	changed := pos != l.oldPosition || l.rotation != l.oldRotation
	l.oldPosition = pos
	l.oldRotation = l.rotation
	return changed
}
