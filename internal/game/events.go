package game

type EventKind int

const (
	EventReset EventKind = iota
	EventBettingOpen
	EventBet
	EventHand
	EventTurn
	EventBust
	EventResult
	EventChips
	EventMatchOver
)

// Event describes one observable change produced by a Round transition.
// Seat is "PLAYER1", "PLAYER2" or "DEALER"; Role is set for participant
// events only. Amount carries the bet, chip balance or settlement delta
// depending on Kind.
type Event struct {
	Kind    EventKind
	Seat    string
	Role    Role
	Cards   []Card
	Amount  int
	Outcome Outcome
}

func handEvent(seat string, cards []Card) Event {
	return Event{Kind: EventHand, Seat: seat, Cards: cards}
}

func turnEvent(seat string) Event {
	return Event{Kind: EventTurn, Seat: seat}
}

func chipsEvent(p *Participant) Event {
	return Event{Kind: EventChips, Seat: p.Role.String(), Role: p.Role, Amount: p.Chips}
}
