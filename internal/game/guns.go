package game

import (
	"math"
	"sort"
	"time"

	"gas-arena/internal/config"
	"gas-arena/internal/geom"
)

// GunRegistry is the match's gun table
type GunRegistry struct {
	guns     map[string]config.GunDefinition
	fallback string
}

// NewGunRegistry builds a registry; unknown IDs resolve to fallback.
func NewGunRegistry(guns map[string]config.GunDefinition, fallback string) *GunRegistry {
	return &GunRegistry{guns: guns, fallback: fallback}
}

// Get returns the definition for id, or the fallback for unknown IDs.
func (r *GunRegistry) Get(id string) (config.GunDefinition, bool) {
	if def, ok := r.guns[id]; ok {
		return def, true
	}
	def, ok := r.guns[r.fallback]
	return def, ok
}

// All returns every definition sorted by ID.
func (r *GunRegistry) All() []config.GunDefinition {
	out := make([]config.GunDefinition, 0, len(r.guns))
	for _, def := range r.guns {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Gun is a held weapon instance.
type Gun struct {
	def      config.GunDefinition
	lastShot time.Time
}

func newGun(def config.GunDefinition) *Gun {
	return &Gun{def: def}
}

// use fires the gun for owner if the fire delay has elapsed. Bullets
// start just outside the owner's body along each pellet's direction.
func (gun *Gun) use(owner *Player) bool {
	g := owner.game
	delay := time.Duration(gun.def.FireDelay) * time.Millisecond
	if !gun.lastShot.IsZero() && g.now.Sub(gun.lastShot) < delay {
		return false
	}
	gun.lastShot = g.now

	spread := gun.def.Spread * math.Pi / 180
	for i := 0; i < gun.def.BulletCount; i++ {
		rotation := owner.rotation
		if spread > 0 {
			rotation += (g.rng.Float64() - 0.5) * spread
		}
		offset := g.cfg.PlayerRadius + bulletSpawnGap
		dir := geom.FromAngle(rotation)
		g.SpawnBullet(owner, gun.def, owner.Position().Add(dir.Scale(offset)), rotation)
	}
	return true
}

const bulletSpawnGap = 0.5
