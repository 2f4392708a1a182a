package sim

// HookPos defines the enum of possible hooking positions
type HookPos struct {
	Name string
}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Info is the item carried by every lifecycle notification.
type Info struct {
	Run  uint32
	Time VTime
}

// Hookable defines an object that accept Hooks
type Hookable interface {
	// AcceptHook registers a hook
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered.
	NumHooks() int
}

// Lifecycle notification positions. The item of the HookCtx is an Info.
var (
	HookPosStartSimulation     = &HookPos{Name: "StartSimulation"}
	HookPosFinishSimulation    = &HookPos{Name: "FinishSimulation"}
	HookPosStartRun            = &HookPos{Name: "StartRun"}
	HookPosFinishRun           = &HookPos{Name: "FinishRun"}
	HookPosStartWarmUpTime     = &HookPos{Name: "StartWarmUpTime"}
	HookPosFinishWarmUpTime    = &HookPos{Name: "FinishWarmUpTime"}
	HookPosCompleteThreePhases = &HookPos{Name: "CompleteThreePhases"}
)

// Technique positions. The item is a *CalendarEntry, except for
// HookPosActivityStarted, whose item is the Activity that started.
var (
	// HookPosSchedule triggers after an entry is added to the calendar.
	HookPosSchedule = &HookPos{Name: "Schedule"}

	// HookPosBeforeEvent triggers before a due B event is fired.
	HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

	// HookPosAfterEvent triggers after a B event is fired and its entry is
	// removed from the calendar.
	HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

	// HookPosActivityStarted triggers when a C activity reports that it has
	// started.
	HookPosActivityStarted = &HookPos{Name: "ActivityStarted"}
)

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// HookFunc allows a plain function to be used as a Hook.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface.
type HookableBase struct {
	hooks []Hook
}

// NewHookableBase creates a HookableBase object
func NewHookableBase() *HookableBase {
	h := new(HookableBase)
	h.hooks = make([]Hook, 0)
	return h
}

// AcceptHook register a hook
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns the registered hooks.
func (h *HookableBase) Hooks() []Hook {
	return h.hooks
}

// InvokeHook triggers the register Hooks
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
