package tui

// phase is where the screen is in the load/run lifecycle.
type phase int

const (
	phaseIdle phase = iota
	phaseLoading
	phaseReady
	phaseRunning
	phaseStopping
	phaseFinished
)

func (p phase) String() string {
	return [...]string{
		"No spreadsheet", "📥 Loading...", "✅ Ready", "🚀 Running", "🛑 Stopping...", "🏁 Finished",
	}[p]
}

// busy reports whether a run is still in flight.
func (p phase) busy() bool {
	return p == phaseRunning || p == phaseStopping
}

// Input fields, in focus order.
const (
	fieldSource = iota
	fieldForm
	fieldDelay
	fieldStart
	fieldEnd
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Spreadsheet",
	"Form URL",
	"Delay (s)",
	"Start row",
	"End row",
}
