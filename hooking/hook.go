// Package hooking lets tracers and loggers watch the accesses of a cache
// simulator. The simulator invokes its hooks at named positions and passes
// what happened as the item of the context.
package hooking

// HookPos names the place in a simulator where hooks run, for example the
// completion of a cache access.
type HookPos struct {
	Name string
}

// HookCtx is passed to every hook. Domain is the simulator that fired the
// hook and Item describes the event, such as a cache access record.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable is implemented by simulators that accept hooks.
type Hookable interface {
	AcceptHook(hook Hook)
	RemoveHook(hook Hook) bool
	NumHooks() int
	Hooks() []Hook
}

// A Hook observes a simulator. Hooks run synchronously, in the order they
// were attached, on the goroutine that drives the simulator.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase keeps the hook list of a simulator. Embed it to make a type
// Hookable.
type HookableBase struct {
	hooks []Hook
}

// NumHooks returns how many hooks are attached. Simulators check it to skip
// building the context when nobody listens.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns a copy of the attached hooks.
func (h *HookableBase) Hooks() []Hook {
	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)

	return hooks
}

// AcceptHook attaches a hook. Attaching the same hook twice panics, since it
// would record every event twice.
func (h *HookableBase) AcceptHook(hook Hook) {
	if h.indexOf(hook) >= 0 {
		panic("hook already attached")
	}

	h.hooks = append(h.hooks, hook)
}

// RemoveHook detaches a hook and reports whether it was attached.
func (h *HookableBase) RemoveHook(hook Hook) bool {
	i := h.indexOf(hook)
	if i < 0 {
		return false
	}

	h.hooks = append(h.hooks[:i:i], h.hooks[i+1:]...)

	return true
}

// InvokeHook runs every attached hook with the context.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}

func (h *HookableBase) indexOf(hook Hook) int {
	for i, attached := range h.hooks {
		if attached == hook {
			return i
		}
	}

	return -1
}
