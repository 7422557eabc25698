package game

import (
	"log"

	"gas-arena/internal/metrics"
)

// CommandKind identifies a client command.
type CommandKind uint8

const (
	CommandConnect CommandKind = iota + 1
	CommandJoin
	CommandInput
	CommandLeave
)

func (k CommandKind) String() string {
	switch k {
	case CommandConnect:
		return "connect"
	case CommandJoin:
		return "join"
	case CommandInput:
		return "input"
	case CommandLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// Toggle is a key press or release.
type Toggle struct {
	Key     string
	Pressed bool
}

// Input is one client input message.
type Input struct {
	Toggles      []Toggle
	HasRotation  bool
	Rotation     float64
	Mobile       bool
	MobileMoving bool
	MobileAngle  float64
}

// Command is a client request handed from a connection goroutine to the
// tick thread.
type Command struct {
	Kind      CommandKind
	Session   string
	Name      string    // connect only
	Transport Transport // connect only
	Input     Input     // input only
}

// Enqueue hands cmd to the tick thread. It is the only Game method that
// is safe to call from other goroutines. It returns false when the queue
// is full and the command was dropped.
func (g *Game) Enqueue(cmd Command) bool {
	if g.commands.TryPush(cmd) {
		return true
	}
	n := g.droppedCommands.Add(1)
	metrics.RecordInputDropped()
	if n%100 == 1 {
		log.Printf("⚠️ Command queue full, dropped %d commands (last: %s from %s)", n, cmd.Kind, cmd.Session)
	}
	return false
}

// DroppedCommands returns how many commands were dropped on a full queue.
func (g *Game) DroppedCommands() uint64 {
	return g.droppedCommands.Load()
}

// drainCommands applies every queued command in arrival order.
func (g *Game) drainCommands() {
	for {
		cmd, ok := g.commands.TryPop()
		if !ok {
			return
		}
		g.handleCommand(cmd)
	}
}

func (g *Game) handleCommand(cmd Command) {
	switch cmd.Kind {
	case CommandConnect:
		if _, exists := g.sessions[cmd.Session]; exists {
			return
		}
		g.AddPlayer(cmd.Session, cmd.Name, cmd.Transport)
	case CommandJoin:
		p, ok := g.sessions[cmd.Session]
		if !ok {
			return
		}
		if !p.joined && !g.ActivatePlayer(p) {
			g.RemovePlayer(p)
		}
	case CommandInput:
		p, ok := g.sessions[cmd.Session]
		if !ok || p.dead || !p.joined {
			return
		}
		p.applyInput(cmd.Input)
	case CommandLeave:
		if p, ok := g.sessions[cmd.Session]; ok {
			g.RemovePlayer(p)
		}
	}
}
