package crossput

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Alia5/crossput/internal/statecell"
)

// Aggregation bookkeeping. glob_dev_to_aggr in the original implementation
// is split here into containingAggregates (member id -> set of aggregate
// ids directly containing it, used both for the UpdateAllDevices
// member-skip and for DestroyHierarchy) and aggregateMembersOf (aggregate
// id -> its direct member ids, needed to walk back down when an aggregate
// itself is torn down). aggregateMemo/aggregateKeyByID implement the
// memoize-by-member-multiset rule (spec §4.7 / §8 "Aggregate identity").
var (
	containingAggregates = map[ID]map[ID]bool{}
	aggregateMembersOf   = map[ID][]ID{}
	aggregateMemo        = map[string]ID{}
	aggregateKeyByID     = map[ID]string{}
)

func isAggregateMember(id ID) bool {
	return len(containingAggregates[id]) > 0
}

func aggregateKey(members []ID) string {
	sorted := append([]ID(nil), members...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var sb strings.Builder
	for _, id := range sorted {
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
		sb.WriteByte(',')
	}
	return sb.String()
}

// Aggregate composes members into a single logical device of their shared
// type. A single-member request returns the member itself; a repeated
// request for the same member multiset returns the previously created
// aggregate (spec §4.7, §8 "Aggregate identity").
func Aggregate(members []ID) (Device, error) {
	if err := checkReentrant(); err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("crossput: aggregate requires at least one member")
	}

	devs := make([]Device, 0, len(members))
	var typ DeviceType
	for i, id := range members {
		d, ok := GetDevice(id)
		if !ok {
			return nil, fmt.Errorf("crossput: unknown device %d", id)
		}
		if i == 0 {
			typ = d.Type()
		} else if d.Type() != typ {
			return nil, fmt.Errorf("crossput: aggregate members must share a device type")
		}
		devs = append(devs, d)
	}
	if len(devs) == 1 {
		return devs[0], nil
	}

	key := aggregateKey(members)
	if existing, ok := aggregateMemo[key]; ok {
		if dev, ok := GetDevice(existing); ok {
			return dev, nil
		}
		delete(aggregateMemo, key)
		delete(aggregateKeyByID, existing)
	}

	id := ID(idAllocator.Reserve())
	base := aggregateBase{id: id, typ: typ, members: devs}

	var dev Device
	switch typ {
	case DeviceMouse:
		dev = newAggregateMouse(base)
	case DeviceKeyboard:
		dev = newAggregateKeyboard(base)
	case DeviceGamepad:
		dev = newAggregateGamepad(base)
	default:
		return nil, fmt.Errorf("crossput: cannot aggregate device type %v", typ)
	}

	devices.Put(uint64(id), dev)
	aggregateMemo[key] = id
	aggregateKeyByID[id] = key
	aggregateMembersOf[id] = append([]ID(nil), members...)
	for _, mid := range members {
		if containingAggregates[mid] == nil {
			containingAggregates[mid] = map[ID]bool{}
		}
		containingAggregates[mid][id] = true
	}
	return dev, nil
}

// destroyHierarchy ports DestroyHierarchy from src/common.hpp: gather id
// plus every aggregate transitively containing it, then repeatedly destroy
// whichever targets are not (still) a member of another undestroyed
// aggregate in the set, "always prioritizing those which are not members
// of aggregates" (outermost first, cascading inward as each destruction
// frees the aggregates it contained). A pass that frees nothing means the
// aggregation graph is cyclic.
func destroyHierarchy(id ID) error {
	targets := []ID{id}
	seen := map[ID]bool{id: true}
	stack := []ID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for aggID := range containingAggregates[cur] {
			if !seen[aggID] {
				seen[aggID] = true
				targets = append(targets, aggID)
				stack = append(stack, aggID)
			}
		}
	}

	remaining := targets
	for len(remaining) > 0 {
		var next []ID
		for _, t := range remaining {
			if isAggregateMember(t) {
				next = append(next, t)
				continue
			}
			destroyOne(t)
			removeAggregateBookkeeping(t)
		}
		if len(next) == len(remaining) {
			return ErrCyclicAggregation
		}
		remaining = next
	}
	return nil
}

// removeAggregateBookkeeping drops t's memoization entry (if t is an
// aggregate) and clears the containment links from t down to its own
// members, unblocking them for the next DestroyHierarchy pass.
func removeAggregateBookkeeping(t ID) {
	if key, ok := aggregateKeyByID[t]; ok {
		delete(aggregateMemo, key)
		delete(aggregateKeyByID, t)
	}
	for _, mid := range aggregateMembersOf[t] {
		if set, ok := containingAggregates[mid]; ok {
			delete(set, t)
			if len(set) == 0 {
				delete(containingAggregates, mid)
			}
		}
	}
	delete(aggregateMembersOf, t)
}

// motorResolver is implemented by every device capable of owning motors,
// real or aggregate, so TryCreateForce/SetMotorGain can resolve an
// aggregate-relative motor index down to the real owning device (spec
// §4.7 "Motors").
type motorResolver interface {
	totalMotors() int
	resolveMotor(motor int) (*baseDevice, int, bool)
}

func (d *baseDevice) totalMotors() int { return len(d.motorGains) }

func (d *baseDevice) resolveMotor(motor int) (*baseDevice, int, bool) {
	if motor < 0 || motor >= len(d.motorGains) {
		return nil, 0, false
	}
	return d, motor, true
}

func (a *aggregateBase) totalMotors() int {
	total := 0
	for _, m := range a.members {
		if mr, ok := m.(motorResolver); ok {
			total += mr.totalMotors()
		}
	}
	return total
}

func (a *aggregateBase) resolveMotor(motor int) (*baseDevice, int, bool) {
	if motor < 0 {
		return nil, 0, false
	}
	for _, m := range a.members {
		mr, ok := m.(motorResolver)
		if !ok {
			continue
		}
		n := mr.totalMotors()
		if motor < n {
			return mr.resolveMotor(motor)
		}
		motor -= n
	}
	return nil, 0, false
}

// resolveDeviceMotor resolves dev's motor (a real device's own index, or an
// aggregate-relative index) down to the real owning device and its local
// motor index.
func resolveDeviceMotor(dev Device, motor int) (*baseDevice, int, bool) {
	if mr, ok := dev.(motorResolver); ok {
		return mr.resolveMotor(motor)
	}
	return nil, 0, false
}

// aggregateBase carries the fields and transitions common to every
// aggregate device type: the ordered member list and the all-connected
// derivation of spec §4.7 "Connectivity".
type aggregateBase struct {
	id        ID
	typ       DeviceType
	members   []Device
	connected bool
}

func (a *aggregateBase) ID() ID            { return a.id }
func (a *aggregateBase) Type() DeviceType  { return a.typ }
func (a *aggregateBase) Connected() bool   { return a.connected }
func (a *aggregateBase) IsAggregate() bool { return true }

// MotorCount returns the concatenation of members' motor counts (spec
// §4.7 "Motors").
func (a *aggregateBase) MotorCount() int { return a.totalMotors() }

// Gain resolves motor to its owning member and forwards the query.
func (a *aggregateBase) Gain(motor int) float32 {
	owner, local, ok := a.resolveMotor(motor)
	if !ok {
		return 0
	}
	return owner.Gain(local)
}

func (a *aggregateBase) DisplayName() string {
	if !a.connected {
		return ""
	}
	names := make([]string, 0, len(a.members))
	for _, m := range a.members {
		if n := m.DisplayName(); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, " + ")
}

// updateMembers drives every member's Update and derives the aggregate's
// own connectivity from the result, firing Connected/Disconnected on
// transition. Concrete aggregate types call this first, then fold member
// state into their own cells.
func (a *aggregateBase) updateMembers() error {
	if insideCallback {
		return ErrReentrantMutation
	}
	allConnected := true
	for _, m := range a.members {
		if err := m.Update(); err != nil {
			return err
		}
		if !m.Connected() {
			allConnected = false
		}
	}
	was := a.connected
	a.connected = allConnected
	if a.connected && !was {
		dispatchDeviceStatus(a.id, DeviceConnected)
	} else if !a.connected && was {
		dispatchDeviceStatus(a.id, DeviceDisconnected)
	}
	return nil
}

func (a *aggregateBase) destroy() {
	a.connected = false
	dispatchDeviceStatus(a.id, DeviceDestroyed)
}

// AGGREGATE MOUSE (spec §4.7 "Mouse aggregate")

type aggregateMouse struct {
	aggregateBase

	haveBaseline bool
	baselines    []struct{ X, Y, SX, SY int64 }

	buttons                      []statecell.Cell
	posX, posY, scrollX, scrollY int64
	deltaX, deltaY               int64
	deltaSX, deltaSY             int64
}

func newAggregateMouse(base aggregateBase) *aggregateMouse {
	return &aggregateMouse{aggregateBase: base}
}

func (a *aggregateMouse) Update() error {
	if err := a.updateMembers(); err != nil {
		return err
	}

	if len(a.baselines) != len(a.members) {
		a.baselines = make([]struct{ X, Y, SX, SY int64 }, len(a.members))
		a.haveBaseline = false
	}

	var sumDX, sumDY, sumSDX, sumSDY int64
	maxButtons := 0
	for i, m := range a.members {
		mouse, ok := m.(Mouse)
		if !ok {
			continue
		}
		x, y := mouse.Position()
		sx, sy := mouse.Scroll()
		if !a.haveBaseline {
			a.baselines[i] = struct{ X, Y, SX, SY int64 }{x, y, sx, sy}
		} else {
			b := &a.baselines[i]
			sumDX += x - b.X
			sumDY += y - b.Y
			sumSDX += sx - b.SX
			sumSDY += sy - b.SY
			b.X, b.Y, b.SX, b.SY = x, y, sx, sy
		}
		if n := mouse.ButtonCount(); n > maxButtons {
			maxButtons = n
		}
	}
	a.haveBaseline = true

	if maxButtons > len(a.buttons) {
		grown := make([]statecell.Cell, maxButtons)
		copy(grown, a.buttons)
		for i := len(a.buttons); i < maxButtons; i++ {
			grown[i] = statecell.NewCell(0.5)
		}
		a.buttons = grown
	}

	a.deltaX, a.deltaY, a.deltaSX, a.deltaSY = 0, 0, 0, 0
	if sumDX != 0 || sumDY != 0 {
		a.deltaX, a.deltaY = sumDX, sumDY
		a.posX += sumDX
		a.posY += sumDY
		dispatchMouseMove(a.id, a.posX, a.posY, sumDX, sumDY)
	}
	if sumSDX != 0 || sumSDY != 0 {
		a.deltaSX, a.deltaSY = sumSDX, sumSDY
		a.scrollX += sumSDX
		a.scrollY += sumSDY
		dispatchMouseScroll(a.id, a.scrollX, a.scrollY, sumSDX, sumSDY)
	}

	ts := now()
	for i := range a.buttons {
		maxV := float32(0)
		for _, m := range a.members {
			if mouse, ok := m.(Mouse); ok && i < mouse.ButtonCount() {
				if v := mouse.ButtonValue(i); v > maxV {
					maxV = v
				}
			}
		}
		changed, state := a.buttons[i].Modify(maxV, ts)
		if changed {
			dispatchMouseButton(a.id, i, a.buttons[i].Value(), state)
		}
	}
	return nil
}

func (a *aggregateMouse) Position() (x, y int64)        { return a.posX, a.posY }
func (a *aggregateMouse) Delta() (dx, dy int64)         { return a.deltaX, a.deltaY }
func (a *aggregateMouse) Scroll() (sx, sy int64)        { return a.scrollX, a.scrollY }
func (a *aggregateMouse) ScrollDelta() (sdx, sdy int64) { return a.deltaSX, a.deltaSY }

func (a *aggregateMouse) ButtonCount() int { return len(a.buttons) }

func (a *aggregateMouse) ButtonThreshold(index int) float32 {
	if index < 0 || index >= len(a.buttons) {
		return 0
	}
	return a.buttons[index].Threshold()
}

func (a *aggregateMouse) SetButtonThreshold(index int, t float32) {
	if index < 0 || index >= len(a.buttons) {
		return
	}
	a.buttons[index].SetThreshold(t)
}

func (a *aggregateMouse) ButtonValue(index int) float32 {
	if index < 0 || index >= len(a.buttons) {
		return 0
	}
	return a.buttons[index].Value()
}

func (a *aggregateMouse) ButtonState(index int) bool {
	if index < 0 || index >= len(a.buttons) {
		return false
	}
	return a.buttons[index].State()
}

func (a *aggregateMouse) TimeSinceButtonChange(index int) float64 {
	if index < 0 || index >= len(a.buttons) {
		return math.Inf(1)
	}
	return a.buttons[index].TimeSinceChange(now())
}

// AGGREGATE KEYBOARD (spec §4.7 "Keyboard aggregate")

type aggregateKeyboard struct {
	aggregateBase

	keys    [NumKeyCodes]statecell.Cell
	pressed int
}

func newAggregateKeyboard(base aggregateBase) *aggregateKeyboard {
	k := &aggregateKeyboard{aggregateBase: base}
	for i := range k.keys {
		k.keys[i] = statecell.NewCell(0.5)
	}
	return k
}

func (a *aggregateKeyboard) Update() error {
	if err := a.updateMembers(); err != nil {
		return err
	}
	ts := now()
	for k := 0; k < NumKeyCodes; k++ {
		key := Key(k)
		maxV := float32(0)
		for _, m := range a.members {
			if kb, ok := m.(Keyboard); ok {
				if v := kb.KeyValue(key); v > maxV {
					maxV = v
				}
			}
		}
		changed, state := a.keys[key].ModifyCounted(maxV, ts, &a.pressed)
		if changed {
			dispatchKeyboardKey(a.id, key, a.keys[key].Value(), state)
		}
	}
	return nil
}

func (a *aggregateKeyboard) NumKeysPressed() int { return a.pressed }

func (a *aggregateKeyboard) KeyThreshold(key Key) float32 {
	if !IsValidKey(key) {
		return 0
	}
	return a.keys[key].Threshold()
}

func (a *aggregateKeyboard) SetKeyThreshold(key Key, t float32) {
	if !IsValidKey(key) {
		return
	}
	a.keys[key].SetThreshold(t)
}

func (a *aggregateKeyboard) KeyValue(key Key) float32 {
	if !IsValidKey(key) {
		return 0
	}
	return a.keys[key].Value()
}

func (a *aggregateKeyboard) KeyState(key Key) bool {
	if !IsValidKey(key) {
		return false
	}
	return a.keys[key].State()
}

func (a *aggregateKeyboard) TimeSinceKeyChange(key Key) float64 {
	if !IsValidKey(key) {
		return math.Inf(1)
	}
	return a.keys[key].TimeSinceChange(now())
}

// AGGREGATE GAMEPAD (spec §4.7 "Gamepad aggregate")

type aggregateGamepad struct {
	aggregateBase

	buttons [NumButtonCodes]statecell.Cell
	sticks  []struct{ X, Y float32 }
}

func newAggregateGamepad(base aggregateBase) *aggregateGamepad {
	g := &aggregateGamepad{aggregateBase: base}
	for i := range g.buttons {
		g.buttons[i] = statecell.NewCell(0.5)
	}
	return g
}

func (a *aggregateGamepad) Update() error {
	if err := a.updateMembers(); err != nil {
		return err
	}
	ts := now()
	for b := 0; b < NumButtonCodes; b++ {
		button := Button(b)
		maxV := float32(0)
		for _, m := range a.members {
			if gp, ok := m.(Gamepad); ok {
				if v := gp.ButtonValue(button); v > maxV {
					maxV = v
				}
			}
		}
		changed, state := a.buttons[button].Modify(maxV, ts)
		if changed {
			dispatchGamepadButton(a.id, button, a.buttons[button].Value(), state)
		}
	}

	total := 0
	for _, m := range a.members {
		if gp, ok := m.(Gamepad); ok {
			total += gp.ThumbstickCount()
		}
	}

	// Thumbsticks are concatenated, never merged (spec §4.7). A count
	// change resets every stick and re-fires a change event for each.
	if total != len(a.sticks) {
		a.sticks = make([]struct{ X, Y float32 }, total)
		idx := 0
		for _, m := range a.members {
			gp, ok := m.(Gamepad)
			if !ok {
				continue
			}
			for i := 0; i < gp.ThumbstickCount(); i++ {
				x, y := gp.Thumbstick(i)
				a.sticks[idx] = struct{ X, Y float32 }{x, y}
				dispatchGamepadThumbstick(a.id, idx, x, y)
				idx++
			}
		}
		return nil
	}

	idx := 0
	for _, m := range a.members {
		gp, ok := m.(Gamepad)
		if !ok {
			continue
		}
		for i := 0; i < gp.ThumbstickCount(); i++ {
			x, y := gp.Thumbstick(i)
			if a.sticks[idx].X != x || a.sticks[idx].Y != y {
				a.sticks[idx].X, a.sticks[idx].Y = x, y
				dispatchGamepadThumbstick(a.id, idx, x, y)
			}
			idx++
		}
	}
	return nil
}

func (a *aggregateGamepad) ButtonThreshold(b Button) float32 {
	if !IsValidButton(b) {
		return 0
	}
	return a.buttons[b].Threshold()
}

func (a *aggregateGamepad) SetButtonThreshold(b Button, t float32) {
	if !IsValidButton(b) {
		return
	}
	a.buttons[b].SetThreshold(t)
}

func (a *aggregateGamepad) ButtonValue(b Button) float32 {
	if !IsValidButton(b) {
		return 0
	}
	return a.buttons[b].Value()
}

func (a *aggregateGamepad) ButtonState(b Button) bool {
	if !IsValidButton(b) {
		return false
	}
	return a.buttons[b].State()
}

func (a *aggregateGamepad) TimeSinceButtonChange(b Button) float64 {
	if !IsValidButton(b) {
		return math.Inf(1)
	}
	return a.buttons[b].TimeSinceChange(now())
}

func (a *aggregateGamepad) ThumbstickCount() int { return len(a.sticks) }

func (a *aggregateGamepad) Thumbstick(index int) (x, y float32) {
	if index < 0 || index >= len(a.sticks) {
		return 0, 0
	}
	return a.sticks[index].X, a.sticks[index].Y
}
