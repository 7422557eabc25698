package game

import (
	"log"
	"math"
	"math/rand"
	"time"

	"gas-arena/internal/config"
	"gas-arena/internal/geom"
)

// Gas is the shrinking hazard circle. Stage geometry comes from the match
// stage table; currentPosition and currentRadius are the authoritative
// safe circle and only move on the damage cadence.
type Gas struct {
	mode             config.GasMode
	overrideDuration float64
	stages           []config.GasStage

	stage           int
	state           config.GasState
	initialDuration float64 // seconds
	countdownStart  time.Time
	percentage      float64

	oldPosition     geom.Vec2
	newPosition     geom.Vec2
	currentPosition geom.Vec2
	oldRadius       float64
	newRadius       float64
	currentRadius   float64
	dps             float64

	ticksSinceDamage int
	doDamage         bool

	dirty           bool // stage changed this tick
	percentageDirty bool
}

func newGas(cfg config.GasConfig, stages []config.GasStage, center geom.Vec2) *Gas {
	gas := &Gas{
		mode:             cfg.Mode,
		overrideDuration: cfg.OverrideDuration,
		stages:           stages,
		state:            config.GasInactive,
		oldPosition:      center,
		newPosition:      center,
		currentPosition:  center,
	}
	if len(stages) > 0 {
		first := stages[0]
		gas.state = first.State
		gas.oldRadius = first.OldRadius
		gas.newRadius = first.NewRadius
		gas.currentRadius = first.OldRadius
		gas.dps = first.DPS
	}
	return gas
}

func (gas *Gas) Stage() int                 { return gas.stage }
func (gas *Gas) State() config.GasState     { return gas.state }
func (gas *Gas) CurrentPosition() geom.Vec2 { return gas.currentPosition }
func (gas *Gas) CurrentRadius() float64     { return gas.currentRadius }
func (gas *Gas) Percentage() float64        { return gas.percentage }
func (gas *Gas) DPS() float64               { return gas.dps }

// IsInGas reports whether pos is outside the safe circle. A point exactly
// on the boundary counts as exposed.
func (gas *Gas) IsInGas(pos geom.Vec2) bool {
	return geom.DistanceSquared(pos, gas.currentPosition) >= gas.currentRadius*gas.currentRadius
}

// advance moves to the next stage. It returns the stage duration and
// false when the sequence has already ended or gas is disabled.
func (gas *Gas) advance(now time.Time, rng *rand.Rand) (float64, bool) {
	if gas.mode == config.GasDisabled {
		return 0, false
	}
	if gas.stage+1 >= len(gas.stages) {
		return 0, false
	}
	gas.stage++
	def := gas.stages[gas.stage]

	gas.state = def.State
	gas.initialDuration = def.Duration
	if gas.mode == config.GasDebug && def.Duration != 0 {
		gas.initialDuration = gas.overrideDuration
	}
	gas.oldRadius = def.OldRadius
	gas.newRadius = def.NewRadius
	gas.dps = def.DPS

	if gas.state == config.GasWaiting {
		gas.oldPosition = gas.newPosition
		if gas.newRadius != 0 {
			gas.newPosition = geom.RandomPointInsideCircle(rng, gas.oldPosition, gas.oldRadius-gas.newRadius)
		}
		gas.currentPosition = gas.oldPosition
		gas.currentRadius = gas.oldRadius
	}

	gas.countdownStart = now
	gas.percentage = 1
	gas.dirty = true
	return gas.initialDuration, true
}

// updatePercentage recomputes the elapsed fraction of the current stage.
func (gas *Gas) updatePercentage(now time.Time) {
	if gas.state == config.GasInactive {
		return
	}
	if gas.initialDuration <= 0 {
		gas.percentage = 1
	} else {
		elapsed := now.Sub(gas.countdownStart).Seconds()
		gas.percentage = math.Min(math.Max(elapsed/gas.initialDuration, 0), 1)
	}
	if gas.state == config.GasAdvancing {
		gas.percentageDirty = true
	}
}

// tickDamageCadence counts ticks and, every interval, refreshes the safe
// circle while advancing and arms damage for this tick's player pass.
func (gas *Gas) tickDamageCadence(interval int) {
	gas.ticksSinceDamage++
	if gas.ticksSinceDamage < interval {
		return
	}
	gas.ticksSinceDamage = 0
	if gas.state == config.GasAdvancing {
		gas.currentPosition = geom.VecLerp(gas.oldPosition, gas.newPosition, gas.percentage)
		gas.currentRadius = geom.Lerp(gas.oldRadius, gas.newRadius, gas.percentage)
	}
	gas.doDamage = gas.dps > 0
}

func (gas *Gas) info() GasInfo {
	return GasInfo{
		Stage:       gas.stage,
		State:       gas.state,
		Duration:    gas.initialDuration,
		OldPosition: gas.oldPosition,
		NewPosition: gas.newPosition,
		OldRadius:   gas.oldRadius,
		NewRadius:   gas.newRadius,
	}
}

func (gas *Gas) snapshot() GasSnapshot {
	return GasSnapshot{
		Stage:      gas.stage,
		State:      gas.state,
		Position:   gas.currentPosition,
		Radius:     gas.currentRadius,
		Percentage: gas.percentage,
		DPS:        gas.dps,
	}
}

func (gas *Gas) resetFlags() {
	gas.dirty = false
	gas.percentageDirty = false
	gas.doDamage = false
}

// AdvanceGas moves the hazard to its next stage and schedules the one
// after it when the stage has a duration.
func (g *Game) AdvanceGas() {
	duration, ok := g.gas.advance(g.now, g.rng)
	if !ok {
		return
	}
	gas := g.gas
	log.Printf("☁️ Gas stage %d: %s (%.0fs, radius %.0f → %.0f)",
		gas.stage, gas.state, duration, gas.oldRadius, gas.newRadius)
	g.events.EmitSimple(EventTypeGasAdvance, g.tickNum, "", GasPayload{
		Stage:     gas.stage,
		State:     gas.state,
		Duration:  duration,
		NewX:      gas.newPosition.X,
		NewY:      gas.newPosition.Y,
		NewRadius: gas.newRadius,
	})
	if duration > 0 {
		g.after(time.Duration(duration*float64(time.Second)), g.AdvanceGas)
	}
}

// IsInGas reports whether pos is exposed to the hazard.
func (g *Game) IsInGas(pos geom.Vec2) bool {
	return g.gas.IsInGas(pos)
}
