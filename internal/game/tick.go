package game

import (
	"math"
	"slices"
	"time"

	"gas-arena/internal/metrics"
)

// Tick advances the match by one fixed period. now is the tick's logical
// time; timers and the hazard zone are anchored to it. The pass order is
// part of the contract: damage is applied before the physics step that
// would otherwise process a dead bullet again, and dispatch runs after
// every mutation so clients see one consistent tick.
func (g *Game) Tick(now time.Time) {
	g.now = now
	g.tickNum++
	g.visibility.Invalidate()

	g.timers.runDue(now)
	g.drainCommands()

	g.markMovedLoot()
	g.expireBullets()
	g.applyDamage()
	g.detonate()

	g.gas.updatePercentage(now)
	g.gas.tickDamageCadence(g.cfg.GasDamageInterval)

	g.world.Step(g.cfg.TickPeriod.Seconds())
	g.visibility.Invalidate()

	g.updatePlayers()
	g.dispatch()
	g.reset()

	if g.started && g.AliveCount() == 0 && !g.over {
		g.finish()
	}
	g.flushRemovals()

	g.publishSnapshot()
	metrics.UpdateMatch(g.AliveCount(), len(g.connectedPlayers), len(g.bullets), g.gas.stage)
}

// markMovedLoot flags loot pushed around by the last physics step.
func (g *Game) markMovedLoot() {
	for _, l := range g.loot {
		if l.moved() {
			g.diff.MarkPartial(l)
		}
	}
}

// expireBullets drops bullets that travelled their maximum distance by the
// previous step. Clients expire these locally, so no deletion is sent.
func (g *Game) expireBullets() {
	for _, b := range g.bullets {
		if !b.removed && b.DistanceSquared() >= b.MaxDistanceSquared() {
			g.destroyBullet(b)
		}
	}
}

// applyDamage resolves the contacts recorded by the last physics step.
// Every bullet that hit something is announced as deleted, including one
// that expired in the same step.
func (g *Game) applyDamage() {
	for _, rec := range g.damageRecords {
		b := rec.Bullet
		if target, ok := rec.Damaged.(Damageable); ok {
			amount := b.def.Damage
			if target.Kind() != KindPlayer {
				amount *= b.def.ObstacleMultiplier
			}
			target.Damage(amount, rec.Damager)
		}
		g.destroyBullet(b)
		if !b.deletionSent {
			b.deletionSent = true
			g.deletedBullets = append(g.deletedBullets, b)
		}
	}
	clear(g.damageRecords)
	g.damageRecords = g.damageRecords[:0]
	g.bullets = slices.DeleteFunc(g.bullets, func(b *Bullet) bool { return b.removed })
}

// detonate runs queued explosions. Explosions may queue more (barrels
// caught in a blast), and those detonate in the same pass.
func (g *Game) detonate() {
	for i := 0; i < len(g.explosions); i++ {
		g.explosions[i].explode()
	}
}

// updatePlayers runs movement, regeneration, attacks, pickups and hazard
// damage for every living player. Players may die mid-pass, so it walks a
// copy.
func (g *Game) updatePlayers() {
	living := slices.Clone(g.livingPlayers)
	for _, p := range living {
		if p.dead {
			continue
		}

		p.updateMovement()
		if p.moving || p.turning {
			g.diff.MarkPartial(p)
		}

		p.adrenaline = math.Max(0, p.adrenaline-adrenalineDrain)
		if p.health < g.cfg.MaxHealth {
			p.health = math.Min(g.cfg.MaxHealth, p.health+p.adrenaline*regenPerAdrenaline)
		}

		if p.startedAttacking && p.gun != nil {
			p.gun.use(p)
		}
		if p.interact {
			g.pickupLoot(p)
		}
		if g.gas.doDamage && g.IsInGas(p.Position()) {
			p.Damage(g.gas.dps, nil)
		}

		p.turning = false
		p.startedAttacking = false
		p.stoppedAttacking = false
		p.interact = false
	}
}

// dispatch sends each joined client its share of the tick.
func (g *Game) dispatch() {
	for _, p := range g.connectedPlayers {
		if !p.joined || p.removing {
			continue
		}
		if p.movesSinceLastUpdate > g.cfg.VisibilityMoveThreshold || g.updateObjects {
			p.updateVisibleObjects()
		}
		g.diff.Classify(p.visible, p, &p.diff)

		for _, msg := range g.killFeed {
			p.sendPacket(msg)
		}
		p.sendPacket(g.buildUpdate(p))
		p.diff.Reset()
	}

	// Deleted entities must not linger in any cached view.
	for id := range g.diff.Deleted() {
		for _, p := range g.connectedPlayers {
			delete(p.visible, id)
		}
	}
}

func (g *Game) buildUpdate(p *Player) UpdatePacket {
	center := p.Position()
	pk := UpdatePacket{Self: p.selfState()}

	for _, e := range p.diff.Full.Sorted() {
		pk.Full = append(pk.Full, e.Full())
	}
	for _, e := range p.diff.Partial.Sorted() {
		pk.Partial = append(pk.Partial, e.Partial())
	}
	for _, e := range p.diff.Deleted.Sorted() {
		pk.Deleted = append(pk.Deleted, e.ID())
	}

	if g.aliveCountDirty {
		alive := g.AliveCount()
		pk.AliveCount = &alive
	}
	if g.gas.dirty {
		info := g.gas.info()
		pk.Gas = &info
	}
	if g.gas.percentageDirty {
		pct := g.gas.percentage
		pk.GasPercentage = &pct
	}

	for _, b := range g.newBullets {
		if g.visibility.InView(center, b.initialPosition) {
			pk.NewBullets = append(pk.NewBullets, b.state())
		}
	}
	for _, b := range g.deletedBullets {
		if g.visibility.InView(center, b.Position()) {
			pk.DeletedBullets = append(pk.DeletedBullets, b.id)
		}
	}
	for _, e := range g.explosions {
		if g.visibility.InView(center, e.position) {
			pk.Explosions = append(pk.Explosions, e.state())
		}
	}
	return pk
}

// reset clears everything that only lives for one tick.
func (g *Game) reset() {
	g.diff.Reset()
	clear(g.killFeed)
	g.killFeed = g.killFeed[:0]
	clear(g.newBullets)
	g.newBullets = g.newBullets[:0]
	clear(g.deletedBullets)
	g.deletedBullets = g.deletedBullets[:0]
	clear(g.explosions)
	g.explosions = g.explosions[:0]

	g.gas.resetFlags()
	g.aliveCountDirty = false
	g.updateObjects = false
	for _, p := range g.connectedPlayers {
		p.hitEffect = false
	}
}

// flushRemovals disconnects players whose transport failed this tick.
func (g *Game) flushRemovals() {
	for _, p := range g.pendingRemoval {
		g.RemovePlayer(p)
	}
	clear(g.pendingRemoval)
	g.pendingRemoval = g.pendingRemoval[:0]
}

func (g *Game) publishSnapshot() {
	snap := &MatchSnapshot{
		TickNumber:  g.tickNum,
		MatchID:     g.matchID,
		Started:     g.started,
		Over:        g.over,
		AllowJoin:   g.allowJoin,
		Players:     make([]PlayerSnapshot, 0, len(g.connectedPlayers)),
		Gas:         g.gas.snapshot(),
		AliveCount:  g.AliveCount(),
		Connected:   len(g.connectedPlayers),
		Bullets:     len(g.bullets),
		Obstacles:   len(g.obstacles),
		Loot:        len(g.loot),
		TotalKills:  g.totalKills,
		Leaders:     g.leaders.Top(leaderboardSize),
		DroppedCmds: g.droppedCommands.Load(),
	}
	for _, p := range g.connectedPlayers {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:       p.id,
			Name:     p.name,
			Position: p.Position(),
			Health:   p.health,
			Kills:    p.kills,
			Gun:      p.GunID(),
			Dead:     p.dead,
			Joined:   p.joined,
		})
	}
	g.snapshots.Publish(snap)
}
