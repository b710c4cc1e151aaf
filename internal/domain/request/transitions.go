package request

// Edge is one legal transition and the event that triggers it.
type Edge struct {
	From    Status
	To      Status
	Trigger string
}

// edges is the only place transition legality is defined.
var edges = []Edge{
	{From: StatusPendingPayment, To: StatusPaid, Trigger: "payment confirmed"},
	{From: StatusPendingPayment, To: StatusPaymentExpired, Trigger: "payment deadline passed"},
	{From: StatusPendingPayment, To: StatusCancelled, Trigger: "cancelled"},

	{From: StatusPaid, To: StatusProcessing, Trigger: "staff began processing"},
	{From: StatusPaid, To: StatusCancelled, Trigger: "cancelled"},

	{From: StatusProcessing, To: StatusReadyForClaim, Trigger: "document prepared"},
	{From: StatusProcessing, To: StatusRejected, Trigger: "rejected by staff"},
	{From: StatusProcessing, To: StatusCancelled, Trigger: "cancelled"},

	{From: StatusReadyForClaim, To: StatusClaimed, Trigger: "student confirmed pickup"},
	{From: StatusReadyForClaim, To: StatusCancelled, Trigger: "cancelled"},

	{From: StatusClaimed, To: StatusReleased, Trigger: "document released"},
	{From: StatusClaimed, To: StatusCancelled, Trigger: "cancelled"},
}

// Edges returns a copy of the transition table.
func Edges() []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

func CanTransitionTo(current, target Status) bool {
	_, ok := edgeFor(current, target)
	return ok
}

// AllowedTargets lists the statuses reachable from current in one step.
func AllowedTargets(current Status) []Status {
	var out []Status
	for _, e := range edges {
		if e.From == current {
			out = append(out, e.To)
		}
	}
	return out
}

// TriggerFor names the event behind a legal edge, or "" when there is none.
func TriggerFor(from, to Status) string {
	e, _ := edgeFor(from, to)
	return e.Trigger
}

func edgeFor(from, to Status) (Edge, bool) {
	for _, e := range edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}
