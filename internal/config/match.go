package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"gas-arena/internal/geom"
)

// GasStage is one entry of the hazard stage table, indexed by stage number.
type GasStage struct {
	Duration  float64  `toml:"duration"` // seconds, 0 means the stage never ends on its own
	State     GasState `toml:"state"`
	OldRadius float64  `toml:"old_radius"`
	NewRadius float64  `toml:"new_radius"`
	DPS       float64  `toml:"dps"`
}

// GunDefinition holds the ballistics of a gun or of explosion shrapnel.
type GunDefinition struct {
	ID                 string  `toml:"id" json:"id"`
	Damage             float64 `toml:"damage" json:"damage"`
	ObstacleMultiplier float64 `toml:"obstacle_multiplier" json:"obstacleMultiplier"`
	Speed              float64 `toml:"speed" json:"speed"` // world units per second
	SpeedVariance      float64 `toml:"speed_variance" json:"speedVariance"`
	MaxDistance        float64 `toml:"max_distance" json:"maxDistance"`
	FireDelay          int     `toml:"fire_delay" json:"fireDelay"` // milliseconds
	BulletCount        int     `toml:"bullet_count" json:"bulletCount"`
	Spread             float64 `toml:"spread" json:"spread"` // degrees, full cone
}

// ExplosionDefinition describes area damage plus shrapnel.
type ExplosionDefinition struct {
	ID                 string  `toml:"id"`
	Radius             float64 `toml:"radius"`
	Damage             float64 `toml:"damage"`
	ObstacleMultiplier float64 `toml:"obstacle_multiplier"`
	ShrapnelCount      int     `toml:"shrapnel_count"`
	Shrapnel           string  `toml:"shrapnel"` // gun ID supplying shrapnel ballistics
}

// ObstacleDefinition describes a destructible static obstacle type.
type ObstacleDefinition struct {
	ID         string  `toml:"id"`
	Shape      string  `toml:"shape"` // "circle" or "box"
	Radius     float64 `toml:"radius"`
	HalfWidth  float64 `toml:"half_width"`
	HalfHeight float64 `toml:"half_height"`
	Health     float64 `toml:"health"`
	Explosion  string  `toml:"explosion"` // optional explosion ID on destruction
	Loot       string  `toml:"loot"`      // optional gun ID dropped on destruction
}

// ObstaclePlacement positions one obstacle on the map.
type ObstaclePlacement struct {
	Type     string    `toml:"type"`
	Position geom.Vec2 `toml:"position"`
	Rotation float64   `toml:"rotation"`
}

// Match is the resolved match content consumed read-only by the simulation.
type Match struct {
	Gas           GasConfig
	Spawn         SpawnConfig
	Stages        []GasStage
	Guns          map[string]GunDefinition
	Explosions    map[string]ExplosionDefinition
	ObstacleTypes map[string]ObstacleDefinition
	Obstacles     []ObstaclePlacement
}

// matchFile is the on-disk TOML layout. Absent sections keep the defaults.
type matchFile struct {
	Gas           *GasConfig            `toml:"gas"`
	Spawn         *SpawnConfig          `toml:"spawn"`
	Stages        []GasStage            `toml:"stages"`
	Guns          []GunDefinition       `toml:"guns"`
	Explosions    []ExplosionDefinition `toml:"explosions"`
	ObstacleTypes []ObstacleDefinition  `toml:"obstacle_types"`
	Obstacles     []ObstaclePlacement   `toml:"obstacles"`
}

// DefaultMatch returns the built-in match content with the given gas and
// spawn settings.
func DefaultMatch(gas GasConfig, spawn SpawnConfig) Match {
	m := Match{
		Gas:           gas,
		Spawn:         spawn,
		Stages:        DefaultGasStages(),
		Guns:          make(map[string]GunDefinition),
		Explosions:    make(map[string]ExplosionDefinition),
		ObstacleTypes: make(map[string]ObstacleDefinition),
		Obstacles:     DefaultObstacles(),
	}
	for _, g := range DefaultGuns() {
		m.Guns[g.ID] = g
	}
	for _, e := range DefaultExplosions() {
		m.Explosions[e.ID] = e
	}
	for _, o := range DefaultObstacleTypes() {
		m.ObstacleTypes[o.ID] = o
	}
	return m
}

// LoadMatchFile overlays the TOML file at path onto base. An empty path or
// a missing file returns base unchanged; a malformed or invalid file is an
// error.
func LoadMatchFile(path string, base Match) (Match, error) {
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return base, fmt.Errorf("read match file: %w", err)
	}

	return ParseMatch(data, base)
}

// ParseMatch overlays TOML match content onto base and validates the result.
func ParseMatch(data []byte, base Match) (Match, error) {
	var f matchFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return base, fmt.Errorf("parse match file: %w", err)
	}

	m := base.clone()
	if f.Gas != nil {
		m.Gas = *f.Gas
	}
	if f.Spawn != nil {
		m.Spawn = *f.Spawn
	}
	if len(f.Stages) > 0 {
		m.Stages = f.Stages
	}
	for _, g := range f.Guns {
		m.Guns[g.ID] = g
	}
	for _, e := range f.Explosions {
		m.Explosions[e.ID] = e
	}
	for _, o := range f.ObstacleTypes {
		m.ObstacleTypes[o.ID] = o
	}
	if len(f.Obstacles) > 0 {
		m.Obstacles = f.Obstacles
	}

	if err := m.Validate(); err != nil {
		return base, err
	}
	return m, nil
}

// Validate checks cross references and value ranges.
func (m Match) Validate() error {
	if len(m.Stages) == 0 {
		return errors.New("match: stage table is empty")
	}
	for i, s := range m.Stages {
		if s.Duration < 0 || s.OldRadius < 0 || s.NewRadius < 0 {
			return fmt.Errorf("match: stage %d has negative values", i)
		}
	}
	for id, g := range m.Guns {
		if g.Speed <= 0 || g.MaxDistance <= 0 {
			return fmt.Errorf("match: gun %q needs positive speed and max_distance", id)
		}
		if g.BulletCount < 1 {
			return fmt.Errorf("match: gun %q needs bullet_count >= 1", id)
		}
	}
	for id, e := range m.Explosions {
		if e.ShrapnelCount > 0 {
			if _, ok := m.Guns[e.Shrapnel]; !ok {
				return fmt.Errorf("match: explosion %q references unknown shrapnel %q", id, e.Shrapnel)
			}
		}
	}
	for id, o := range m.ObstacleTypes {
		if o.Shape != "circle" && o.Shape != "box" {
			return fmt.Errorf("match: obstacle type %q has unknown shape %q", id, o.Shape)
		}
		if o.Explosion != "" {
			if _, ok := m.Explosions[o.Explosion]; !ok {
				return fmt.Errorf("match: obstacle type %q references unknown explosion %q", id, o.Explosion)
			}
		}
		if o.Loot != "" {
			if _, ok := m.Guns[o.Loot]; !ok {
				return fmt.Errorf("match: obstacle type %q references unknown loot %q", id, o.Loot)
			}
		}
	}
	for i, p := range m.Obstacles {
		if _, ok := m.ObstacleTypes[p.Type]; !ok {
			return fmt.Errorf("match: obstacle %d has unknown type %q", i, p.Type)
		}
	}
	return nil
}

func (m Match) clone() Match {
	c := m
	c.Stages = append([]GasStage(nil), m.Stages...)
	c.Obstacles = append([]ObstaclePlacement(nil), m.Obstacles...)
	c.Guns = make(map[string]GunDefinition, len(m.Guns))
	for k, v := range m.Guns {
		c.Guns[k] = v
	}
	c.Explosions = make(map[string]ExplosionDefinition, len(m.Explosions))
	for k, v := range m.Explosions {
		c.Explosions[k] = v
	}
	c.ObstacleTypes = make(map[string]ObstacleDefinition, len(m.ObstacleTypes))
	for k, v := range m.ObstacleTypes {
		c.ObstacleTypes[k] = v
	}
	return c
}
