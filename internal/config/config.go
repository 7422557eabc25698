// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for server, simulation, and match settings.
//
// Process-level settings come from environment variables (see Load); the
// match content (hazard stages, guns, obstacles, spawn and gas modes) comes
// from an optional TOML match file (see LoadMatchFile).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gas-arena/internal/geom"
)

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	MaxPlayers     int
	AllowedOrigins []string
	HTTPRateLimit  float64 // requests per second per IP
	HTTPBurst      int
	WSMessageRate  float64 // inbound websocket messages per second per session
	WSMessageBurst int
	SendBuffer     int // outbound packets buffered per session
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:           8000,
		MaxPlayers:     80,
		AllowedOrigins: []string{"*"},
		HTTPRateLimit:  10,
		HTTPBurst:      20,
		WSMessageRate:  120,
		WSMessageBurst: 240,
		SendBuffer:     64,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if mp := getEnvInt("MAX_PLAYERS", 0); mp > 0 {
		cfg.MaxPlayers = mp
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}
	if r := getEnvFloat("HTTP_RATE_LIMIT", 0); r > 0 {
		cfg.HTTPRateLimit = r
	}
	if sb := getEnvInt("SEND_BUFFER", 0); sb > 0 {
		cfg.SendBuffer = sb
	}

	return cfg
}

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// GameConfig holds the tick cadence, movement, map, and visibility settings
// read by the simulation core.
type GameConfig struct {
	TickPeriod              time.Duration
	MovementSpeed           float64 // world units per second, axis-aligned
	DiagonalSpeed           float64 // world units per second per axis when moving diagonally
	MobileSpeedFactor       float64
	MapWidth                float64
	MapHeight               float64
	ViewHalfWidth           float64
	ViewHalfHeight          float64
	VisibilityMoveThreshold int // movement updates before visibility is recomputed
	GasDamageInterval       int // ticks between hazard damage applications
	TickSampleWindow        int // ticks per average ms/tick log line
	MatchDuration           time.Duration
	JoinCutoff              time.Duration
	EndGrace                time.Duration
	InputQueueSize          int
	PlayerRadius            float64
	LootRadius              float64
	PickupRadius            float64
	MaxHealth               float64
	MaxAdrenaline           float64
	StartingGun             string
	Seed                    int64 // 0 means seed from the clock
}

// DefaultGame returns the default simulation configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		TickPeriod:              30 * time.Millisecond,
		MovementSpeed:           28,
		DiagonalSpeed:           19.8, // MovementSpeed / sqrt(2)
		MobileSpeedFactor:       1.45,
		MapWidth:                720,
		MapHeight:               720,
		ViewHalfWidth:           80,
		ViewHalfHeight:          60,
		VisibilityMoveThreshold: 8,
		GasDamageInterval:       30,
		TickSampleWindow:        200,
		MatchDuration:           180 * time.Second,
		JoinCutoff:              145 * time.Second,
		EndGrace:                time.Second,
		InputQueueSize:          4096,
		PlayerRadius:            2.25,
		LootRadius:              1.5,
		PickupRadius:            5,
		MaxHealth:               100,
		MaxAdrenaline:           100,
		StartingGun:             "pistol",
	}
}

// GameFromEnv returns simulation configuration with environment variable overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if ms := getEnvInt("TICK_MS", 0); ms > 0 {
		cfg.TickPeriod = time.Duration(ms) * time.Millisecond
	}
	if s := getEnvFloat("MOVEMENT_SPEED", 0); s > 0 {
		cfg.MovementSpeed = s
	}
	if s := getEnvFloat("DIAGONAL_SPEED", 0); s > 0 {
		cfg.DiagonalSpeed = s
	}
	if w := getEnvFloat("VIEW_HALF_WIDTH", 0); w > 0 {
		cfg.ViewHalfWidth = w
	}
	if h := getEnvFloat("VIEW_HALF_HEIGHT", 0); h > 0 {
		cfg.ViewHalfHeight = h
	}
	if d := getEnvDuration("MATCH_DURATION", 0); d > 0 {
		cfg.MatchDuration = d
	}
	if d := getEnvDuration("JOIN_CUTOFF", 0); d > 0 {
		cfg.JoinCutoff = d
	}
	if q := getEnvInt("INPUT_QUEUE_SIZE", 0); q > 0 {
		cfg.InputQueueSize = q
	}
	if seed := getEnvInt("SEED", 0); seed != 0 {
		cfg.Seed = int64(seed)
	}

	return cfg
}

// =============================================================================
// HAZARD ZONE & SPAWN
// =============================================================================

// GasConfig selects how the hazard stage table is played.
type GasConfig struct {
	Mode             GasMode `toml:"mode"`
	OverrideDuration float64 `toml:"override_duration"` // seconds, Debug mode only
}

// DefaultGas returns the default hazard configuration.
func DefaultGas() GasConfig {
	return GasConfig{
		Mode:             GasNormal,
		OverrideDuration: 10,
	}
}

// GasFromEnv returns hazard configuration with environment variable overrides.
func GasFromEnv() GasConfig {
	cfg := DefaultGas()

	if m := os.Getenv("GAS_MODE"); m != "" {
		if mode, err := ParseGasMode(m); err == nil {
			cfg.Mode = mode
		}
	}
	if d := getEnvFloat("GAS_OVERRIDE_SECONDS", -1); d >= 0 {
		cfg.OverrideDuration = d
	}

	return cfg
}

// SpawnConfig selects where new players are placed.
type SpawnConfig struct {
	Mode     SpawnMode `toml:"mode"`
	Position geom.Vec2 `toml:"position"`
	Radius   float64   `toml:"radius"`
}

// DefaultSpawn returns the default spawn configuration.
func DefaultSpawn() SpawnConfig {
	return SpawnConfig{
		Mode:     SpawnRandom,
		Position: geom.V(360, 360),
		Radius:   100,
	}
}

// SpawnFromEnv returns spawn configuration with environment variable overrides.
func SpawnFromEnv() SpawnConfig {
	cfg := DefaultSpawn()

	if m := os.Getenv("SPAWN_MODE"); m != "" {
		if mode, err := ParseSpawnMode(m); err == nil {
			cfg.Mode = mode
		}
	}

	return cfg
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// DebugConfig holds diagnostics settings.
type DebugConfig struct {
	Addr          string // pprof + /metrics listener, empty disables it
	AllowExternal bool   // permit a non-loopback debug listener
	BasicAuthUser string
	BasicAuthPass string
	EventLogPath  string // newline-delimited JSON audit log, empty keeps it in memory only
}

// DefaultDebug returns the default diagnostics configuration.
func DefaultDebug() DebugConfig {
	return DebugConfig{
		Addr: "localhost:6060",
	}
}

// DebugFromEnv returns diagnostics configuration with environment variable overrides.
func DebugFromEnv() DebugConfig {
	cfg := DefaultDebug()

	if addr, ok := os.LookupEnv("DEBUG_ADDR"); ok {
		cfg.Addr = addr
	}
	cfg.AllowExternal = os.Getenv("ALLOW_DEBUG_EXTERNAL") == "true"
	cfg.BasicAuthUser = os.Getenv("DEBUG_USER")
	cfg.BasicAuthPass = os.Getenv("DEBUG_PASS")
	if path := os.Getenv("EVENT_LOG_PATH"); path != "" {
		cfg.EventLogPath = path
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server    ServerConfig
	Game      GameConfig
	Gas       GasConfig
	Spawn     SpawnConfig
	Debug     DebugConfig
	MatchFile string
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server:    ServerFromEnv(),
		Game:      GameFromEnv(),
		Gas:       GasFromEnv(),
		Spawn:     SpawnFromEnv(),
		Debug:     DebugFromEnv(),
		MatchFile: os.Getenv("MATCH_FILE"),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
