package honeybadger

// Step is the bundle every public entry point returns: batches completed by
// this call, peer misbehavior discovered while processing it, and outgoing
// messages the caller must deliver (spec.md §4.1 "Observation").
type Step struct {
	Batches  []Batch
	FaultLog FaultLog
	Messages []TargetedMessage
}
