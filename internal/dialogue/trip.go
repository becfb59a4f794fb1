package dialogue

import "fmt"

type Budget string

const (
	BudgetLuxury   Budget = "Luxury"
	BudgetModerate Budget = "Moderate"
	BudgetFriendly Budget = "Budget-friendly"
)

type Confirmation int

const (
	ConfirmPending Confirmation = iota
	ConfirmAccepted
	ConfirmDeclined
)

func (c Confirmation) String() string {
	switch c {
	case ConfirmAccepted:
		return "accepted"
	case ConfirmDeclined:
		return "declined"
	default:
		return "pending"
	}
}

// TripRequest accumulates booking details over a conversation.
// Each field is write-once: extraction never replaces a value that is
// already set.
type TripRequest struct {
	Destination string
	Travelers   string
	Budget      Budget
	Confirmed   Confirmation
}

func (t TripRequest) Complete() bool {
	return t.Destination != "" && t.Travelers != "" && t.Budget != ""
}

func (t TripRequest) Summary() string {
	dest, trav, budget := t.Destination, t.Travelers, string(t.Budget)
	if dest == "" {
		dest = "?"
	}
	if trav == "" {
		trav = "?"
	}
	if budget == "" {
		budget = "?"
	}
	return fmt.Sprintf("%s, %s, %s", dest, trav, budget)
}
