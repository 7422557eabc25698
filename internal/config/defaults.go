package config

import "gas-arena/internal/geom"

// DefaultGasStages returns the built-in hazard stage table. Stage 0 is the
// pre-match state; the last stage has no duration and ends the sequence.
func DefaultGasStages() []GasStage {
	return []GasStage{
		{Duration: 0, State: GasInactive, OldRadius: 512, NewRadius: 512, DPS: 0},
		{Duration: 45, State: GasWaiting, OldRadius: 512, NewRadius: 256, DPS: 0},
		{Duration: 20, State: GasAdvancing, OldRadius: 512, NewRadius: 256, DPS: 1},
		{Duration: 30, State: GasWaiting, OldRadius: 256, NewRadius: 128, DPS: 1},
		{Duration: 15, State: GasAdvancing, OldRadius: 256, NewRadius: 128, DPS: 2.5},
		{Duration: 20, State: GasWaiting, OldRadius: 128, NewRadius: 64, DPS: 2.5},
		{Duration: 10, State: GasAdvancing, OldRadius: 128, NewRadius: 64, DPS: 4},
		{Duration: 15, State: GasWaiting, OldRadius: 64, NewRadius: 32, DPS: 4},
		{Duration: 10, State: GasAdvancing, OldRadius: 64, NewRadius: 32, DPS: 6},
		{Duration: 10, State: GasWaiting, OldRadius: 32, NewRadius: 0, DPS: 6},
		{Duration: 10, State: GasAdvancing, OldRadius: 32, NewRadius: 0, DPS: 8},
		{Duration: 0, State: GasWaiting, OldRadius: 0, NewRadius: 0, DPS: 10},
	}
}

// DefaultGuns returns the built-in gun table, including explosion shrapnel.
func DefaultGuns() []GunDefinition {
	return []GunDefinition{
		{
			ID:                 "pistol",
			Damage:             12,
			ObstacleMultiplier: 1,
			Speed:              250,
			MaxDistance:        120,
			FireDelay:          150,
			BulletCount:        1,
			Spread:             4,
		},
		{
			ID:                 "rifle",
			Damage:             14,
			ObstacleMultiplier: 1.5,
			Speed:              300,
			MaxDistance:        160,
			FireDelay:          100,
			BulletCount:        1,
			Spread:             3,
		},
		{
			ID:                 "shotgun",
			Damage:             8,
			ObstacleMultiplier: 1,
			Speed:              220,
			SpeedVariance:      0.2,
			MaxDistance:        48,
			FireDelay:          900,
			BulletCount:        9,
			Spread:             10,
		},
		{
			ID:                 "barrel_shrapnel",
			Damage:             3,
			ObstacleMultiplier: 1,
			Speed:              240,
			SpeedVariance:      1,
			MaxDistance:        20,
			BulletCount:        1,
		},
	}
}

// DefaultExplosions returns the built-in explosion table.
func DefaultExplosions() []ExplosionDefinition {
	return []ExplosionDefinition{
		{
			ID:                 "barrel",
			Radius:             10,
			Damage:             60,
			ObstacleMultiplier: 2,
			ShrapnelCount:      10,
			Shrapnel:           "barrel_shrapnel",
		},
	}
}

// DefaultObstacleTypes returns the built-in obstacle types.
func DefaultObstacleTypes() []ObstacleDefinition {
	return []ObstacleDefinition{
		{ID: "tree", Shape: "circle", Radius: 3.5, Health: 180},
		{ID: "rock", Shape: "circle", Radius: 4, Health: 200},
		{ID: "crate", Shape: "box", HalfWidth: 3, HalfHeight: 3, Health: 80, Loot: "shotgun"},
		{ID: "barrel", Shape: "circle", Radius: 2, Health: 60, Explosion: "barrel"},
	}
}

// DefaultObstacles returns a fixed layout on a 720x720 map.
func DefaultObstacles() []ObstaclePlacement {
	types := []string{"tree", "rock", "crate", "barrel"}
	placements := make([]ObstaclePlacement, 0, 64)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			x := 45 + float64(col)*90
			y := 45 + float64(row)*90
			// Offset odd rows so obstacles do not line up into corridors.
			if row%2 == 1 {
				x += 30
			}
			placements = append(placements, ObstaclePlacement{
				Type:     types[(row*3+col)%len(types)],
				Position: geom.V(x, y),
			})
		}
	}
	return placements
}
