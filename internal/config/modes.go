package config

import (
	"fmt"
	"strings"
)

// GasMode controls whether and how fast the hazard zone advances.
type GasMode uint8

const (
	GasNormal GasMode = iota
	GasDisabled
	GasDebug // non-zero stage durations replaced by GasConfig.OverrideDuration
)

func (m GasMode) String() string {
	switch m {
	case GasDisabled:
		return "disabled"
	case GasDebug:
		return "debug"
	default:
		return "normal"
	}
}

// ParseGasMode parses "normal", "disabled" or "debug" (case-insensitive).
func ParseGasMode(s string) (GasMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return GasNormal, nil
	case "disabled":
		return GasDisabled, nil
	case "debug":
		return GasDebug, nil
	}
	return GasNormal, fmt.Errorf("unknown gas mode %q", s)
}

func (m *GasMode) UnmarshalText(text []byte) error {
	mode, err := ParseGasMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m GasMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// SpawnMode controls where new players are placed.
type SpawnMode uint8

const (
	SpawnRandom SpawnMode = iota // anywhere on the map outside the gas
	SpawnFixed                   // always SpawnConfig.Position
	SpawnRadius                  // uniform inside SpawnConfig.Radius around Position
)

func (m SpawnMode) String() string {
	switch m {
	case SpawnFixed:
		return "fixed"
	case SpawnRadius:
		return "radius"
	default:
		return "random"
	}
}

// ParseSpawnMode parses "random", "fixed" or "radius" (case-insensitive).
func ParseSpawnMode(s string) (SpawnMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random":
		return SpawnRandom, nil
	case "fixed":
		return SpawnFixed, nil
	case "radius":
		return SpawnRadius, nil
	}
	return SpawnRandom, fmt.Errorf("unknown spawn mode %q", s)
}

func (m *SpawnMode) UnmarshalText(text []byte) error {
	mode, err := ParseSpawnMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m SpawnMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// GasState is the hazard zone's phase within a stage.
type GasState uint8

const (
	GasInactive GasState = iota
	GasWaiting
	GasAdvancing
)

func (s GasState) String() string {
	switch s {
	case GasWaiting:
		return "waiting"
	case GasAdvancing:
		return "advancing"
	default:
		return "inactive"
	}
}

func (s *GasState) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "inactive":
		*s = GasInactive
	case "waiting":
		*s = GasWaiting
	case "advancing":
		*s = GasAdvancing
	default:
		return fmt.Errorf("unknown gas state %q", text)
	}
	return nil
}

func (s GasState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
