// Package view holds the client-side state for each resource screen:
// load/mutate lifecycle, local sort/filter/pagination, and the
// reconciliation rules that decide when a mutation patches in place and
// when it forces a refetch.
package view

// Phase is the lifecycle state of a resource view
type Phase int

const (
	// Idle means nothing has been loaded yet
	Idle Phase = iota
	// Loading means the initial or a follow-up fetch is in flight
	Loading
	// Loaded means the view holds current data
	Loaded
	// Mutating means a create/update/delete is in flight
	Mutating
	// Errored means the last operation failed; the message is shown in
	// place of the data
	Errored
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Mutating:
		return "mutating"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}
