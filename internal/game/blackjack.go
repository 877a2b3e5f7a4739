package game

import (
	"errors"

	"github.com/google/uuid"
)

type State string

const (
	StateWaitingPlayers State = "WAITING_PLAYERS"
	StateBetting        State = "BETTING"
	StateDealing        State = "DEALING"
	StateTurnPlayer1    State = "TURN_PLAYER1"
	StateTurnPlayer2    State = "TURN_PLAYER2"
	StateDealerPlay     State = "DEALER_PLAY"
	StateSettlement     State = "SETTLEMENT"
	StateMatchOver      State = "MATCH_OVER"
)

// DealerStandsOn is the total at which the dealer stops drawing.
const DealerStandsOn = 17

var (
	ErrWrongState    = errors.New("action not allowed in current state")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrInvalidBet    = errors.New("bet must be positive and no more than chip balance")
	ErrAlreadyBet    = errors.New("bet already placed this round")
	ErrSeatTaken     = errors.New("seat already occupied")
	ErrNotSeated     = errors.New("role is not seated")
	ErrTableNotReady = errors.New("both seats must be filled")
)

// Round is the blackjack state machine for one table. It is not safe for
// concurrent use; a single owner drives it and publishes the events each
// operation returns.
type Round struct {
	id      string
	state   State
	deck    *Deck
	dealer  Hand
	seats   map[Role]*Participant
	newDeck func() *Deck
	onMove  func(from, to State)
}

type Option func(*Round)

// WithDeckSource replaces the shuffled deck used for each round.
func WithDeckSource(f func() *Deck) Option {
	return func(r *Round) { r.newDeck = f }
}

// WithTransitionHook is called on every state change.
func WithTransitionHook(f func(from, to State)) Option {
	return func(r *Round) { r.onMove = f }
}

func NewRound(opts ...Option) *Round {
	r := &Round{
		state:   StateWaitingPlayers,
		seats:   make(map[Role]*Participant, 2),
		newDeck: NewDeck,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Round) ID() string   { return r.id }
func (r *Round) State() State { return r.state }

// Participant returns a copy of the seated participant.
func (r *Round) Participant(role Role) (Participant, bool) {
	p, ok := r.seats[role]
	if !ok {
		return Participant{}, false
	}
	cp := *p
	cp.Hand = Hand{cards: p.Hand.Cards()}
	return cp, true
}

func (r *Round) DealerCards() []Card {
	return r.dealer.Cards()
}

// VisibleDealerCards hides the hole card until the dealer plays.
func (r *Round) VisibleDealerCards() []Card {
	cards := r.dealer.Cards()
	if r.holeCardHidden() && len(cards) > 1 {
		return cards[:1]
	}
	return cards
}

func (r *Round) DealerValue() int {
	return r.dealer.Value()
}

func (r *Round) DeckRemaining() int {
	if r.deck == nil {
		return 0
	}
	return r.deck.Remaining()
}

func (r *Round) holeCardHidden() bool {
	switch r.state {
	case StateDealing, StateTurnPlayer1, StateTurnPlayer2:
		return true
	}
	return false
}

// Ready reports whether both seats are filled.
func (r *Round) Ready() bool {
	return len(r.seats) == len(Roles)
}

// InProgress reports whether chips are at stake in the current round: a
// bet has been placed or cards are out.
func (r *Round) InProgress() bool {
	switch r.state {
	case StateWaitingPlayers, StateSettlement, StateMatchOver:
		return false
	case StateBetting:
		for _, p := range r.seats {
			if p.HasBet() {
				return true
			}
		}
		return false
	}
	return true
}

func (r *Round) setState(s State) {
	from := r.state
	r.state = s
	if r.onMove != nil && from != s {
		r.onMove(from, s)
	}
}

// Seat places a new participant in role. Seats only open while waiting.
func (r *Round) Seat(role Role, chips int) error {
	if !role.Valid() {
		return ErrNotSeated
	}
	if _, ok := r.seats[role]; ok {
		return ErrSeatTaken
	}
	if r.state != StateWaitingPlayers {
		return ErrWrongState
	}
	r.seats[role] = NewParticipant(role, chips)
	return nil
}

// Vacate removes role and abandons whatever was in progress; no chips move.
// It returns the state the table was in.
func (r *Round) Vacate(role Role) State {
	prev := r.state
	if _, ok := r.seats[role]; !ok {
		return prev
	}
	delete(r.seats, role)
	for _, p := range r.seats {
		p.resetRound()
	}
	r.dealer.Clear()
	r.deck = nil
	r.setState(StateWaitingPlayers)
	return prev
}

// Restock tops up every seated participant left with no chips. It only
// applies between matches, while a seat is waiting to be filled.
func (r *Round) Restock(chips int) error {
	if r.state != StateWaitingPlayers {
		return ErrWrongState
	}
	for _, p := range r.seats {
		if p.Chips <= 0 {
			p.Chips = chips
		}
	}
	return nil
}

// StartBetting opens a new round with a fresh deck.
func (r *Round) StartBetting() ([]Event, error) {
	switch r.state {
	case StateWaitingPlayers:
		if !r.Ready() {
			return nil, ErrTableNotReady
		}
	case StateSettlement:
	default:
		return nil, ErrWrongState
	}

	r.id = uuid.New().String()
	r.deck = r.newDeck()
	r.dealer.Clear()

	events := []Event{{Kind: EventReset}}
	for _, role := range Roles {
		p := r.seats[role]
		p.resetRound()
		events = append(events, chipsEvent(p))
	}
	r.setState(StateBetting)
	return append(events, Event{Kind: EventBettingOpen}), nil
}

// Abort throws away the current deal after a fatal error and reopens betting
// without moving chips.
func (r *Round) Abort() ([]Event, error) {
	if !r.Ready() {
		return nil, ErrTableNotReady
	}
	r.state = StateSettlement
	return r.StartBetting()
}

// PlaceBet records a bet; the second valid bet deals the cards.
func (r *Round) PlaceBet(role Role, amount int) ([]Event, error) {
	if r.state != StateBetting {
		return nil, ErrWrongState
	}
	p, ok := r.seats[role]
	if !ok {
		return nil, ErrNotSeated
	}
	if p.HasBet() {
		return nil, ErrAlreadyBet
	}
	if amount <= 0 || amount > p.Chips {
		return nil, ErrInvalidBet
	}

	p.Bet = amount
	events := []Event{{Kind: EventBet, Seat: role.String(), Role: role, Amount: amount}}

	for _, other := range r.seats {
		if !other.HasBet() {
			return events, nil
		}
	}

	dealt, err := r.deal()
	if err != nil {
		return nil, err
	}
	return append(events, dealt...), nil
}

func (r *Round) deal() ([]Event, error) {
	r.setState(StateDealing)

	for _, role := range Roles {
		p := r.seats[role]
		for i := 0; i < 2; i++ {
			card, err := r.deck.Draw()
			if err != nil {
				return nil, err
			}
			p.Hand.Add(card)
		}
	}
	for i := 0; i < 2; i++ {
		card, err := r.deck.Draw()
		if err != nil {
			return nil, err
		}
		r.dealer.Add(card)
	}

	events := make([]Event, 0, 4)
	for _, role := range Roles {
		events = append(events, handEvent(role.String(), r.seats[role].Hand.Cards()))
	}
	events = append(events, handEvent(DealerSeat, r.dealer.Cards()[:1]))

	r.setState(StateTurnPlayer1)
	return append(events, turnEvent(Player1.String())), nil
}

func (r *Round) checkTurn(role Role) (*Participant, error) {
	var current Role
	switch r.state {
	case StateTurnPlayer1:
		current = Player1
	case StateTurnPlayer2:
		current = Player2
	default:
		return nil, ErrWrongState
	}
	if role != current {
		return nil, ErrNotYourTurn
	}
	return r.seats[role], nil
}

// Hit draws one card for role; a bust ends the turn.
func (r *Round) Hit(role Role) ([]Event, error) {
	p, err := r.checkTurn(role)
	if err != nil {
		return nil, err
	}

	card, err := r.deck.Draw()
	if err != nil {
		return nil, err
	}
	p.Hand.Add(card)

	events := []Event{handEvent(role.String(), p.Hand.Cards())}
	if !p.Hand.IsBust() {
		return events, nil
	}
	events = append(events, Event{Kind: EventBust, Seat: role.String(), Role: role})
	return append(events, r.advance()...), nil
}

func (r *Round) Stand(role Role) ([]Event, error) {
	if _, err := r.checkTurn(role); err != nil {
		return nil, err
	}
	return r.advance(), nil
}

func (r *Round) advance() []Event {
	if r.state == StateTurnPlayer1 {
		r.setState(StateTurnPlayer2)
		return []Event{turnEvent(Player2.String())}
	}
	r.setState(StateDealerPlay)
	return []Event{
		turnEvent(DealerSeat),
		handEvent(DealerSeat, r.dealer.Cards()),
	}
}

// DealerDone reports whether the dealer has reached a standing total.
func (r *Round) DealerDone() bool {
	return r.dealer.Value() >= DealerStandsOn
}

// DealerStep draws a single dealer card if the dealer must hit. done is true
// once the dealer stands or busts.
func (r *Round) DealerStep() (events []Event, done bool, err error) {
	if r.state != StateDealerPlay {
		return nil, false, ErrWrongState
	}
	if r.DealerDone() {
		return nil, true, nil
	}

	card, err := r.deck.Draw()
	if err != nil {
		return nil, false, err
	}
	r.dealer.Add(card)
	return []Event{handEvent(DealerSeat, r.dealer.Cards())}, r.DealerDone(), nil
}

// Settle pays out both seats. A seat left with no chips ends the match.
func (r *Round) Settle() ([]Result, []Event, error) {
	if r.state != StateDealerPlay || !r.DealerDone() {
		return nil, nil, ErrWrongState
	}

	dv, dn := r.dealer.Value(), r.dealer.Len()
	results := make([]Result, 0, len(Roles))
	events := make([]Event, 0, 2*len(Roles))

	for _, role := range Roles {
		p := r.seats[role]
		outcome, delta := Payout(p.Hand.Value(), p.Hand.Len(), dv, dn, p.Bet)
		p.Chips += delta
		if p.Chips < 0 {
			p.Chips = 0
		}

		results = append(results, Result{
			Role:    role,
			Bet:     p.Bet,
			Cards:   p.Hand.Cards(),
			Value:   p.Hand.Value(),
			Outcome: outcome,
			Delta:   delta,
			Chips:   p.Chips,
		})
		events = append(events,
			Event{Kind: EventResult, Seat: role.String(), Role: role, Outcome: outcome, Amount: delta},
			chipsEvent(p),
		)
	}

	r.setState(StateSettlement)
	for _, role := range Roles {
		if r.seats[role].Chips <= 0 {
			events = append(events, Event{Kind: EventMatchOver, Seat: role.String(), Role: role})
			r.setState(StateMatchOver)
		}
	}
	return results, events, nil
}
