package output

// ProgressNotifier receives step-by-step progress during a run.
// Implementations must not block the workflow; slow consumers drop
// messages rather than stall an iteration.
type ProgressNotifier interface {
	// Notify reports one step transition with a human-readable message.
	Notify(step, message string)
}

// NopNotifier discards all progress events.
type NopNotifier struct{}

func (NopNotifier) Notify(step, message string) {}

// FuncNotifier adapts a function to the ProgressNotifier interface.
type FuncNotifier func(step, message string)

func (f FuncNotifier) Notify(step, message string) { f(step, message) }
