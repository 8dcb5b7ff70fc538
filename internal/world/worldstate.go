package world

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// WorldState is the latest published view of every actor. The simulation
// writes it after each fixed tick; readers on other goroutines take
// snapshots.
type WorldState struct {
	mu       sync.RWMutex
	tick     uint64
	playerID int
	actors   map[int]*Actor
}

type Actor struct {
	ID        int
	Position  mgl64.Vec3
	Velocity  mgl64.Vec3
	Yaw       float64
	Pitch     float64
	Roll      float64
	OnGround  bool
	JumpState string
}

type Snapshot struct {
	Tick     uint64
	PlayerID int
	Actors   []Actor
}

func NewWorldState() *WorldState {
	return &WorldState{actors: make(map[int]*Actor)}
}

func (ws *WorldState) SetPlayer(id int) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.playerID = id
}

func (ws *WorldState) SetTick(tick uint64) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.tick = tick
}

// UpdateActor inserts or replaces the actor with a.ID.
func (ws *WorldState) UpdateActor(a Actor) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.actors == nil {
		ws.actors = make(map[int]*Actor)
	}
	ws.actors[a.ID] = &a
}

func (ws *WorldState) RemoveActors(ids []int) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for _, id := range ids {
		delete(ws.actors, id)
	}
}

func (ws *WorldState) Actor(id int) (Actor, bool) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	a, ok := ws.actors[id]
	if !ok {
		return Actor{}, false
	}
	return *a, true
}

// GetState returns a copy of every actor ordered by ID.
func (ws *WorldState) GetState() Snapshot {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	actors := make([]Actor, 0, len(ws.actors))
	for _, a := range ws.actors {
		actors = append(actors, *a)
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].ID < actors[j].ID })
	return Snapshot{
		Tick:     ws.tick,
		PlayerID: ws.playerID,
		Actors:   actors,
	}
}

func (s Snapshot) Player() (Actor, bool) {
	for _, a := range s.Actors {
		if a.ID == s.PlayerID {
			return a, true
		}
	}
	return Actor{}, false
}

func (s Snapshot) String() string {
	player, hasPlayer := s.Player()

	var others []string
	for _, a := range s.Actors {
		if hasPlayer && a.ID == player.ID {
			continue
		}
		info := fmt.Sprintf("ID:%d (%.1f, %.1f, %.1f)", a.ID, a.Position.X(), a.Position.Y(), a.Position.Z())
		if hasPlayer {
			info += fmt.Sprintf(" dist:%.1f", a.Position.Sub(player.Position).Len())
		}
		others = append(others, info)
	}
	othersStr := fmt.Sprintf("[%s]", strings.Join(others, ", "))

	if !hasPlayer {
		return fmt.Sprintf("Snapshot [Tick: %d] | [Actors(%d): %s]", s.Tick, len(others), othersStr)
	}

	hv := mgl64.Vec2{player.Velocity.X(), player.Velocity.Z()}
	return fmt.Sprintf(
		"Snapshot [Tick: %d] | [Player %d: (X: %.2f, Y: %.2f, Z: %.2f, Yaw: %.2f, Pitch: %.2f, Roll: %.2f)] | [Speed: %.2f] | [Jump: %s] | [Actors(%d): %s]",
		s.Tick,
		player.ID, player.Position.X(), player.Position.Y(), player.Position.Z(), player.Yaw, player.Pitch, player.Roll,
		hv.Len(),
		player.JumpState,
		len(others),
		othersStr,
	)
}
