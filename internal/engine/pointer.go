package engine

import rl "github.com/gen2brain/raylib-go/raylib"

type InputAction int

const (
	InputPointer InputAction = iota
	InputPrimary
	InputSecondary
)

type PointerOptions struct {
	Button    InputAction
	HoverText string
}

// PointerHit describes where a pointer ray struck an entity.
type PointerHit struct {
	EntityUID uint64
	Button    InputAction
	Position  rl.Vector3
	Normal    rl.Vector3
	Distance  float32
}

type pointerBinding struct {
	opts  PointerOptions
	event EventWithArg[PointerHit]
}

// PointerEvents routes pointer-down input to per-entity handlers.
type PointerEvents struct {
	bindings map[uint64]*pointerBinding
}

func NewPointerEvents() *PointerEvents {
	return &PointerEvents{bindings: make(map[uint64]*pointerBinding)}
}

// OnPointerDown subscribes cb to pointer-down events on the entity.
// Options from the latest subscription win.
func (p *PointerEvents) OnPointerDown(uid uint64, opts PointerOptions, cb func(PointerHit)) ListenerID {
	b, ok := p.bindings[uid]
	if !ok {
		b = &pointerBinding{}
		p.bindings[uid] = b
	}
	b.opts = opts
	return b.event.AddListener(cb)
}

func (p *PointerEvents) RemoveOnPointerDown(uid uint64) {
	delete(p.bindings, uid)
}

// HoverText returns the hover text registered for the entity, if any.
func (p *PointerEvents) HoverText(uid uint64) (string, bool) {
	b, ok := p.bindings[uid]
	if !ok {
		return "", false
	}
	return b.opts.HoverText, true
}

// PointerDown delivers hit to the entity's handlers when the button matches.
// Reports whether any handler ran.
func (p *PointerEvents) PointerDown(hit PointerHit) bool {
	b, ok := p.bindings[hit.EntityUID]
	if !ok || b.opts.Button != hit.Button || b.event.GetListenerCount() == 0 {
		return false
	}
	b.event.Invoke(hit)
	return true
}
