package chatpod

// UpdateKind distinguishes the stages of a progressively revealed answer.
type UpdateKind string

const (
	// UpdatePartial carries the answer accumulated so far. The transport is
	// expected to collapse consecutive partials into edits of one message.
	UpdatePartial UpdateKind = "partial"
	// UpdateFinal carries the complete answer and ends the turn.
	UpdateFinal UpdateKind = "final"
	// UpdateError carries a user-visible failure message and ends the turn.
	UpdateError UpdateKind = "error"
)

// Update is a communication unit from the relay to the caller/UI.
type Update struct {
	Kind UpdateKind
	Text string
}
