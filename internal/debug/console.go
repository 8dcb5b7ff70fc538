package debug

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/stride/internal/controller"
	"github.com/Versifine/stride/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"
)

const (
	defaultTickInterval = 16 * time.Millisecond
	defaultMovePulse    = 150 * time.Millisecond
	defaultYawStep      = 5.0
	defaultPitchStep    = 3.0

	// camera pivot height above the actor's feet
	eyeHeight = 1.6
	aimReach  = 64.0
)

// Host is the simulation the console drives.
type Host interface {
	Update(frameDt float64) (int, error)
	SetPlayerAxes(a controller.Axes)
	SetPlayerJump(pressed bool)
	Rotate(dYaw, dPitch, dRoll float64)
	Teleport(id int, pos mgl64.Vec3) error
	Despawn(id int) error
	Tune(name string, v float64) error
	Player() controller.State
	PlayerOnGround() bool
}

type StateProvider interface {
	GetState() world.Snapshot
}

type BlockQuerier interface {
	IsSolid(x, y, z int) bool
	Raycast(origin, dir mgl64.Vec3, maxDist float64) (world.Hit, bool)
	Fill(b world.Box) int
	Clear(b world.Box) int
	ChunkCount() int
}

type Options struct {
	TickInterval time.Duration
	MovePulse    time.Duration
	YawStep      float64
	PitchStep    float64
	Output       io.Writer
}

type inputState struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Jump     bool
}

type Console struct {
	host          Host
	stateProvider StateProvider
	blockQuerier  BlockQuerier
	tickInterval  time.Duration
	movePulse     time.Duration
	yawStep       float64
	pitchStep     float64
	out           io.Writer

	mu            sync.Mutex
	currentInput  inputState
	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time
	jumpUntil     time.Time
	commandMode   bool
	commandBuf    []rune
	statusWidth   int
	lastTick      time.Time
}

func NewConsole(host Host, stateProvider StateProvider, blockQuerier BlockQuerier, opts Options) *Console {
	c := &Console{
		host:          host,
		stateProvider: stateProvider,
		blockQuerier:  blockQuerier,
		tickInterval:  opts.TickInterval,
		movePulse:     opts.MovePulse,
		yawStep:       opts.YawStep,
		pitchStep:     opts.PitchStep,
		out:           opts.Output,
	}
	if c.tickInterval <= 0 {
		c.tickInterval = defaultTickInterval
	}
	if c.movePulse <= 0 {
		c.movePulse = defaultMovePulse
	}
	if c.yawStep == 0 {
		c.yawStep = defaultYawStep
	}
	if c.pitchStep == 0 {
		c.pitchStep = defaultPitchStep
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	return c
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.host == nil {
		return fmt.Errorf("console host is nil")
	}
	if c.stateProvider == nil {
		return fmt.Errorf("console state provider is nil")
	}
	if c.blockQuerier == nil {
		return fmt.Errorf("console block querier is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		c.printf("\r\n")
	}()

	c.printf("[debug] console started (W/A/S/D pulse, Space jump, arrows look, X clear, : command, Q quit)\r\n")
	c.renderStatusLine()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.tickLoop(ctx)

	keys := make(chan byte)
	readErr := make(chan error, 1)
	reader := bufio.NewReader(os.Stdin)
	go func() {
		for {
			b, err := reader.ReadByte()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case keys <- b:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		case b := <-keys:
			if !c.isCommandMode() && (b == 'q' || b == 'Q' || b == 3) {
				return nil
			}
			c.handleKey(func() (byte, error) {
				select {
				case next := <-keys:
					return next, nil
				case <-time.After(50 * time.Millisecond):
					return 0, io.EOF
				}
			}, b)
		}
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.tickOnce(now)
			c.renderStatusLine()
		}
	}
}

// tickOnce pushes the held input to the host and advances it by the wall
// time since the previous tick.
func (c *Console) tickOnce(now time.Time) {
	input := c.getInput(now)
	c.host.SetPlayerAxes(axesFor(input))
	c.host.SetPlayerJump(input.Jump)

	c.mu.Lock()
	dt := c.tickInterval.Seconds()
	if !c.lastTick.IsZero() {
		dt = now.Sub(c.lastTick).Seconds()
	}
	c.lastTick = now
	c.mu.Unlock()

	if _, err := c.host.Update(math.Max(dt, 0)); err != nil {
		slog.Debug("debug host update failed", "error", err)
	}
}

func axesFor(in inputState) controller.Axes {
	var a controller.Axes
	if in.Forward {
		a.Forward = 1
	}
	if in.Backward {
		a.Backward = 1
	}
	if in.Left {
		a.Left = 1
	}
	if in.Right {
		a.Right = 1
	}
	return a
}

func (c *Console) handleKey(next func() (byte, error), b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'w', 'W':
		c.pulseForward()
	case 's', 'S':
		c.pulseBackward()
	case 'a', 'A':
		c.pulseLeft()
	case 'd', 'D':
		c.pulseRight()
	case ' ':
		c.pulseJump()
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		n, err := next()
		if err != nil || n != '[' {
			return
		}
		arrow, err := next()
		if err != nil {
			return
		}
		switch arrow {
		case 'D': // left
			c.host.Rotate(-c.yawStep, 0, 0)
		case 'C': // right
			c.host.Rotate(c.yawStep, 0, 0)
		case 'A': // up
			c.host.Rotate(0, -c.pitchStep, 0)
		case 'B': // down
			c.host.Rotate(0, c.pitchStep, 0)
		}
	}
	c.renderStatusLine()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	c.printf("\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		c.printf("\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		c.printf("\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		c.printf("\r:%s ", buf)
		c.printf("\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		c.printf("\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		st := c.host.Player()
		c.printf("[debug] pos=(%.3f,%.3f,%.3f) vel=(%.3f,%.3f,%.3f) yaw=%.1f pitch=%.1f roll=%.1f jump=%s since_grounded=%.3f ground=%t chunks=%d\r\n",
			st.Position.X(), st.Position.Y(), st.Position.Z(),
			st.Velocity.X(), st.Velocity.Y(), st.Velocity.Z(),
			st.Yaw, st.Pitch, st.Roll,
			st.Jump, st.SinceGrounded,
			c.host.PlayerOnGround(),
			c.blockQuerier.ChunkCount(),
		)
	case "snap":
		c.printf("[debug] %s\r\n", c.stateProvider.GetState().String())
	case "tp":
		x, y, z, ok := parseVec3(parts)
		if !ok {
			c.printf("[debug] usage: :tp <x> <y> <z>\r\n")
			return
		}
		if err := c.host.Teleport(c.host.Player().ID, mgl64.Vec3{x, y, z}); err != nil {
			c.printf("[debug] tp failed: %v\r\n", err)
			return
		}
		c.printf("[debug] teleported to (%.3f, %.3f, %.3f)\r\n", x, y, z)
	case "block":
		c.handleBlockCommand(parts)
	case "despawn":
		if len(parts) != 2 {
			c.printf("[debug] usage: :despawn <actor_id>\r\n")
			return
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			c.printf("[debug] invalid actor id\r\n")
			return
		}
		if err := c.host.Despawn(id); err != nil {
			c.printf("[debug] despawn failed: %v\r\n", err)
			return
		}
		c.printf("[debug] actor %d despawned\r\n", id)
	case "aim":
		st := c.host.Player()
		eye := st.Position.Add(mgl64.Vec3{0, eyeHeight, 0})
		hit, ok := c.blockQuerier.Raycast(eye, lookDir(st.Yaw, st.Pitch), aimReach)
		if !ok {
			c.printf("[debug] aim: nothing within %.0f\r\n", aimReach)
			return
		}
		c.printf("[debug] aim: block (%d,%d,%d) face=%v dist=%.2f\r\n",
			hit.Cell[0], hit.Cell[1], hit.Cell[2], hit.Face, hit.Distance)
	case "set":
		if len(parts) != 3 {
			c.printf("[debug] usage: :set <max_speed|late_jump|gravity|jump_speed> <value>\r\n")
			return
		}
		v, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			c.printf("[debug] invalid value %q\r\n", parts[2])
			return
		}
		if err := c.host.Tune(parts[1], v); err != nil {
			c.printf("[debug] set failed: %v\r\n", err)
			return
		}
		c.printf("[debug] %s = %g\r\n", parts[1], v)
	case "look":
		c.handleLookCommand(parts)
	default:
		c.printf("[debug] unknown command: %s\r\n", parts[0])
	}
}

// handleBlockCommand serves ":block x y z" (query) and
// ":block set|clear x y z".
func (c *Console) handleBlockCommand(parts []string) {
	op := "get"
	args := parts[1:]
	if len(args) == 4 {
		op, args = args[0], args[1:]
	}
	if len(args) != 3 {
		c.printf("[debug] usage: :block [set|clear] <x> <y> <z>\r\n")
		return
	}
	x, err1 := strconv.Atoi(args[0])
	y, err2 := strconv.Atoi(args[1])
	z, err3 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil || err3 != nil {
		c.printf("[debug] invalid block args\r\n")
		return
	}

	cell := world.Box{Min: [3]int{x, y, z}, Max: [3]int{x + 1, y + 1, z + 1}}
	switch op {
	case "get":
	case "set":
		if c.blockQuerier.Fill(cell) == 0 {
			c.printf("[debug] block (%d,%d,%d) is outside the level bounds\r\n", x, y, z)
			return
		}
	case "clear":
		c.blockQuerier.Clear(cell)
	default:
		c.printf("[debug] unknown block op %q\r\n", op)
		return
	}
	c.printf("[debug] block (%d,%d,%d): solid=%t\r\n", x, y, z, c.blockQuerier.IsSolid(x, y, z))
}

func (c *Console) handleLookCommand(parts []string) {
	if len(parts) == 2 {
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			c.printf("[debug] invalid actor id\r\n")
			return
		}
		snap := c.stateProvider.GetState()
		for _, a := range snap.Actors {
			if a.ID == id {
				c.lookAt(a.Position.Add(mgl64.Vec3{0, eyeHeight, 0}))
				c.printf("[debug] look at actor %d\r\n", id)
				return
			}
		}
		c.printf("[debug] actor %d not found\r\n", id)
		return
	}

	if x, y, z, ok := parseVec3(parts); ok {
		c.lookAt(mgl64.Vec3{x, y, z})
		c.printf("[debug] look at (%.3f, %.3f, %.3f)\r\n", x, y, z)
		return
	}

	c.printf("[debug] usage: :look <actor_id> or :look <x> <y> <z>\r\n")
}

// lookAt queues the rotation that points the player's camera at target.
func (c *Console) lookAt(target mgl64.Vec3) {
	st := c.host.Player()
	d := target.Sub(st.Position.Add(mgl64.Vec3{0, eyeHeight, 0}))

	yaw := mgl64.RadToDeg(math.Atan2(d.X(), d.Z()))
	horizontal := math.Hypot(d.X(), d.Z())
	pitch := mgl64.RadToDeg(math.Atan2(-d.Y(), horizontal))

	c.host.Rotate(shortestTurn(yaw-st.Yaw), pitch-st.Pitch, 0)
}

func (c *Console) printHelp() {
	c.printf("[debug] keys:\r\n")
	c.printf("  W/S/A/D: pulse movement (~%dms)\r\n", c.movePulse.Milliseconds())
	c.printf("  Space: pulse jump\r\n")
	c.printf("  Arrow Left/Right: yaw -/+%g\r\n", c.yawStep)
	c.printf("  Arrow Up/Down: pitch -/+%g\r\n", c.pitchStep)
	c.printf("  X: clear all input\r\n")
	c.printf("  Q: quit\r\n")
	c.printf("  : enter command mode\r\n")
	c.printf("[debug] commands:\r\n")
	c.printf("  :look <actor_id>\r\n")
	c.printf("  :look <x> <y> <z>\r\n")
	c.printf("  :block [set|clear] <x> <y> <z>\r\n")
	c.printf("  :despawn <actor_id>\r\n")
	c.printf("  :aim\r\n")
	c.printf("  :tp <x> <y> <z>\r\n")
	c.printf("  :set <max_speed|late_jump|gravity|jump_speed> <value>\r\n")
	c.printf("  :state\r\n")
	c.printf("  :snap\r\n")
	c.printf("  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	input := c.currentInput
	width := c.statusWidth
	c.mu.Unlock()

	st := c.host.Player()
	speed := mgl64.Vec2{st.Velocity.X(), st.Velocity.Z()}.Len()

	line := fmt.Sprintf(
		"[W:%s S:%s A:%s D:%s JMP:%s | YAW:%.1f PIT:%.1f | X:%.2f Y:%.2f Z:%.2f | v:%.2f %s]",
		boolLabel(input.Forward),
		boolLabel(input.Backward),
		boolLabel(input.Left),
		boolLabel(input.Right),
		boolLabel(input.Jump),
		st.Yaw,
		st.Pitch,
		st.Position.X(),
		st.Position.Y(),
		st.Position.Z(),
		speed,
		st.Jump,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	c.printf("\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *Console) getInput(now time.Time) inputState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyPulseLocked(now)
	return c.currentInput
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// lookDir is the unit view direction for yaw and pitch in degrees.
func lookDir(yaw, pitch float64) mgl64.Vec3 {
	y, p := mgl64.DegToRad(yaw), mgl64.DegToRad(pitch)
	return mgl64.Vec3{
		math.Sin(y) * math.Cos(p),
		-math.Sin(p),
		math.Cos(y) * math.Cos(p),
	}
}

// shortestTurn maps a yaw difference into (-180,180].
func shortestTurn(d float64) float64 {
	d = math.Mod(d, 360)
	if d <= -180 {
		d += 360
	}
	if d > 180 {
		d -= 360
	}
	return d
}

func parseVec3(parts []string) (float64, float64, float64, bool) {
	if len(parts) != 4 {
		return 0, 0, 0, false
	}
	x, err1 := strconv.ParseFloat(parts[1], 64)
	y, err2 := strconv.ParseFloat(parts[2], 64)
	z, err3 := strconv.ParseFloat(parts[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return x, y, z, true
}

func (c *Console) pulseForward() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	c.currentInput.Forward = true
	c.forwardUntil = now.Add(c.movePulse)
	c.currentInput.Backward = false
	c.backwardUntil = time.Time{}
}

func (c *Console) pulseBackward() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	c.currentInput.Backward = true
	c.backwardUntil = now.Add(c.movePulse)
	c.currentInput.Forward = false
	c.forwardUntil = time.Time{}
}

func (c *Console) pulseLeft() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	c.currentInput.Left = true
	c.leftUntil = now.Add(c.movePulse)
	c.currentInput.Right = false
	c.rightUntil = time.Time{}
}

func (c *Console) pulseRight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	c.currentInput.Right = true
	c.rightUntil = now.Add(c.movePulse)
	c.currentInput.Left = false
	c.leftUntil = time.Time{}
}

// pulseJump holds the jump button for one pulse. A terminal reports no key
// release, so the release is synthesised when the pulse expires.
func (c *Console) pulseJump() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentInput.Jump = true
	c.jumpUntil = time.Now().Add(c.movePulse)
}

func (c *Console) applyPulseLocked(now time.Time) {
	expire := func(held *bool, until *time.Time) {
		if !until.IsZero() && !now.Before(*until) {
			*held = false
			*until = time.Time{}
		}
	}
	expire(&c.currentInput.Forward, &c.forwardUntil)
	expire(&c.currentInput.Backward, &c.backwardUntil)
	expire(&c.currentInput.Left, &c.leftUntil)
	expire(&c.currentInput.Right, &c.rightUntil)
	expire(&c.currentInput.Jump, &c.jumpUntil)
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.currentInput = inputState{}
	c.forwardUntil = time.Time{}
	c.backwardUntil = time.Time{}
	c.leftUntil = time.Time{}
	c.rightUntil = time.Time{}
	c.jumpUntil = time.Time{}
	c.mu.Unlock()
}
