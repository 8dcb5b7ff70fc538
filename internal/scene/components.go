package scene

import (
	"github.com/Versifine/stride/internal/controller"
	"github.com/Versifine/stride/internal/physics"
	"github.com/yohamta/donburi"
)

type ActorData struct {
	ID         int
	Controller *controller.Controller
	Character  *physics.Character
}

var Actor = donburi.NewComponentType[ActorData]()

// IntentData is input gathered between fixed steps. Look deltas are in
// degrees and are consumed by the next Update.
type IntentData struct {
	Axes      controller.Axes
	Jump      bool
	LookYaw   float64
	LookPitch float64
	LookRoll  float64
}

var Intent = donburi.NewComponentType[IntentData]()

var Player = donburi.NewTag()
