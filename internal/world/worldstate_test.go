package world

import (
	"strings"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSnapshotString_IncludesPlayerAndDistances(t *testing.T) {
	ws := NewWorldState()
	ws.SetPlayer(0)
	ws.SetTick(42)
	ws.UpdateActor(Actor{ID: 0, Position: mgl64.Vec3{0, 0, 0}, Velocity: mgl64.Vec3{3, -1, 4}, JumpState: "grounded"})
	ws.UpdateActor(Actor{ID: 7, Position: mgl64.Vec3{3, 0, 4}})

	got := ws.GetState().String()
	for _, want := range []string{"Tick: 42", "Player 0", "Speed: 5.00", "Jump: grounded", "ID:7 (3.0, 0.0, 4.0) dist:5.0"} {
		if !strings.Contains(got, want) {
			t.Fatalf("Snapshot.String() = %q, want contains %q", got, want)
		}
	}
}

func TestSnapshotString_WithoutPlayer(t *testing.T) {
	ws := NewWorldState()
	ws.SetPlayer(99)
	ws.UpdateActor(Actor{ID: 1, Position: mgl64.Vec3{1, 2, 3}})

	got := ws.GetState().String()
	if strings.Contains(got, "dist:") || !strings.Contains(got, "Actors(1)") {
		t.Fatalf("Snapshot.String() = %q", got)
	}
}

func TestWorldState_UpdateReplacesAndRemoves(t *testing.T) {
	ws := &WorldState{}
	ws.UpdateActor(Actor{ID: 3, Position: mgl64.Vec3{1, 0, 0}})
	ws.UpdateActor(Actor{ID: 1})
	ws.UpdateActor(Actor{ID: 3, Position: mgl64.Vec3{2, 0, 0}})

	snapshot := ws.GetState()
	if len(snapshot.Actors) != 2 {
		t.Fatalf("len(snapshot.Actors) = %d, want 2", len(snapshot.Actors))
	}
	if snapshot.Actors[0].ID != 1 || snapshot.Actors[1].ID != 3 {
		t.Fatalf("actors not ordered by ID: %+v", snapshot.Actors)
	}
	if a, _ := ws.Actor(3); a.Position.X() != 2 {
		t.Fatalf("actor 3 x = %v, want 2", a.Position.X())
	}

	ws.RemoveActors([]int{3, 100})
	if _, ok := ws.Actor(3); ok {
		t.Fatalf("actor 3 still present after removal")
	}
}

func TestWorldState_SnapshotIsCopy(t *testing.T) {
	ws := NewWorldState()
	ws.UpdateActor(Actor{ID: 1})
	snapshot := ws.GetState()
	snapshot.Actors[0].Position = mgl64.Vec3{9, 9, 9}

	if a, _ := ws.Actor(1); a.Position != (mgl64.Vec3{}) {
		t.Fatalf("mutating snapshot changed state: %v", a.Position)
	}
}

func TestWorldState_ConcurrentReaders(t *testing.T) {
	ws := NewWorldState()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ws.UpdateActor(Actor{ID: i, Position: mgl64.Vec3{float64(j), 0, 0}})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = ws.GetState().String()
			}
		}()
	}
	wg.Wait()
	if n := len(ws.GetState().Actors); n != 4 {
		t.Fatalf("actors = %d, want 4", n)
	}
}
