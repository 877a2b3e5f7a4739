// Package table runs the blackjack round for one two-seat table. A single
// goroutine owns the game state; connections only post messages to it.
package table

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/calvinwijaya/blackjack-duel/internal/game"
	"github.com/calvinwijaya/blackjack-duel/internal/hub"
	"github.com/calvinwijaya/blackjack-duel/internal/protocol"
	"github.com/calvinwijaya/blackjack-duel/internal/store"
)

// Registry is the connection side of the table: role bookkeeping and line
// delivery. *hub.Hub implements it.
type Registry interface {
	AssignRole(clientID string, role game.Role) error
	RoleOf(clientID string) (game.Role, bool)
	Release(clientID string) (game.Role, bool)
	Len() int
	Broadcast(line string)
	SendTo(role game.Role, line string)
	SendToClient(clientID, line string)
}

var ErrClosed = errors.New("table closed")

type Options struct {
	StartingChips  int
	DealerDelay    time.Duration
	NextRoundDelay time.Duration
	// Round options, e.g. a stacked deck in tests.
	RoundOptions []game.Option
}

func DefaultOptions() Options {
	return Options{
		StartingChips:  100,
		DealerDelay:    time.Second,
		NextRoundDelay: 3 * time.Second,
	}
}

type msg interface{ isTableMsg() }

type join struct{ clientID string }

type leave struct{ clientID string }

type fromClient struct {
	clientID string
	intent   protocol.Intent
}

type dealerTick struct{ gen int }

type nextRound struct{ gen int }

type getSnapshot struct{ reply chan Snapshot }

func (join) isTableMsg()        {}
func (leave) isTableMsg()       {}
func (fromClient) isTableMsg()  {}
func (dealerTick) isTableMsg()  {}
func (nextRound) isTableMsg()   {}
func (getSnapshot) isTableMsg() {}

type Table struct {
	inbox     chan msg
	round     *game.Round
	reg       Registry
	store     store.Store
	opts      Options
	log       zerolog.Logger
	gen       int
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// New starts the table loop. It stops when parent is cancelled or Close is
// called. history may be nil.
func New(parent context.Context, reg Registry, history store.Store, opts Options, log zerolog.Logger) *Table {
	ctx, cancel := context.WithCancel(parent)
	t := &Table{
		inbox:  make(chan msg, 64),
		reg:    reg,
		store:  history,
		opts:   opts,
		log:    log.With().Str("component", "table").Logger(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	roundOpts := append([]game.Option{game.WithTransitionHook(t.logTransition)}, opts.RoundOptions...)
	t.round = game.NewRound(roundOpts...)
	go t.loop()
	return t
}

// Join announces a newly registered connection.
func (t *Table) Join(clientID string) { t.post(join{clientID: clientID}) }

// Leave reports a closed connection.
func (t *Table) Leave(clientID string) { t.post(leave{clientID: clientID}) }

// Submit forwards a decoded intent from a connection.
func (t *Table) Submit(clientID string, intent protocol.Intent) {
	t.post(fromClient{clientID: clientID, intent: intent})
}

// Snapshot returns a point-in-time view of the table.
func (t *Table) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if !t.postCtx(ctx, getSnapshot{reply: reply}) {
		return Snapshot{}, ErrClosed
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-t.done:
		return Snapshot{}, ErrClosed
	}
}

// Close stops the loop and waits for it to exit.
func (t *Table) Close() {
	t.cancel()
	<-t.done
}

func (t *Table) post(m msg) { t.postCtx(context.Background(), m) }

func (t *Table) postCtx(ctx context.Context, m msg) bool {
	select {
	case t.inbox <- m:
		return true
	case <-t.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func (t *Table) loop() {
	defer close(t.done)
	for {
		select {
		case <-t.ctx.Done():
			return

		case m := <-t.inbox:
			switch msg := m.(type) {
			case join:
				t.onJoin(msg.clientID)
			case leave:
				t.onLeave(msg.clientID)
			case fromClient:
				t.onIntent(msg.clientID, msg.intent)
			case dealerTick:
				if msg.gen == t.gen {
					t.onDealerTick()
				}
			case nextRound:
				if msg.gen == t.gen && t.round.State() == game.StateSettlement {
					t.startRound()
				}
			case getSnapshot:
				msg.reply <- t.snapshot()
			}
		}
	}
}

// after posts m once d has elapsed. Ticks carry the generation they were
// scheduled in so that anything left over from an abandoned round is ignored.
func (t *Table) after(d time.Duration, m msg) {
	time.AfterFunc(d, func() { t.post(m) })
}

func (t *Table) publish(events []game.Event) {
	for _, line := range protocol.EncodeAll(events) {
		t.reg.Broadcast(line)
	}
}

func (t *Table) onJoin(clientID string) {
	t.reg.SendToClient(clientID, protocol.Waiting(t.seatSummary()))
	t.log.Info().Str("client", clientID).Int("connections", t.reg.Len()).Msg("connection joined")
}

func (t *Table) onLeave(clientID string) {
	role, held := t.reg.Release(clientID)
	if !held {
		t.log.Info().Str("client", clientID).Msg("spectator left")
		return
	}

	abandoned := t.round.InProgress()
	prev := t.round.Vacate(role)
	t.gen++
	t.log.Info().Str("client", clientID).Str("role", role.String()).Str("state", string(prev)).Bool("abandoned", abandoned).Msg("participant left")

	t.reg.Broadcast(protocol.SystemNotice(role.String() + " left the table"))
	if abandoned {
		t.reg.Broadcast(protocol.SystemNotice("round abandoned"))
	}
	t.reg.Broadcast(protocol.Waiting("waiting for a new " + role.String()))
}

func (t *Table) onIntent(clientID string, intent protocol.Intent) {
	switch in := intent.(type) {
	case protocol.ClaimRole:
		t.claimRole(clientID, in.Role)

	case protocol.Chat:
		from := "GUEST"
		if role, ok := t.reg.RoleOf(clientID); ok {
			from = role.String()
		}
		t.reg.Broadcast(protocol.ChatLine(from, in.Text))

	case protocol.Bet:
		role, ok := t.seated(clientID)
		if !ok {
			return
		}
		amount := in.Amount
		if in.All {
			p, _ := t.round.Participant(role)
			amount = p.Chips
		}
		events, err := t.round.PlaceBet(role, amount)
		if errors.Is(err, game.ErrEmptyDeck) {
			t.abortRound(err)
			return
		}
		if err != nil {
			t.reject(clientID, err)
			if errors.Is(err, game.ErrInvalidBet) {
				t.reg.SendTo(role, protocol.Encode(game.Event{Kind: game.EventBettingOpen}))
			}
			return
		}
		t.publish(events)

	case protocol.Hit:
		role, ok := t.seated(clientID)
		if !ok {
			return
		}
		t.play(clientID, func() ([]game.Event, error) { return t.round.Hit(role) })

	case protocol.Stand:
		role, ok := t.seated(clientID)
		if !ok {
			return
		}
		t.play(clientID, func() ([]game.Event, error) { return t.round.Stand(role) })

	default:
		t.log.Warn().Str("client", clientID).Str("intent", fmt.Sprintf("%T", intent)).Msg("unhandled intent")
	}
}

func (t *Table) play(clientID string, move func() ([]game.Event, error)) {
	events, err := move()
	if err != nil {
		if errors.Is(err, game.ErrEmptyDeck) {
			t.abortRound(err)
			return
		}
		t.reject(clientID, err)
		return
	}
	t.publish(events)
	if t.round.State() == game.StateDealerPlay {
		t.after(t.opts.DealerDelay, dealerTick{gen: t.gen})
	}
}

func (t *Table) claimRole(clientID string, role game.Role) {
	if err := t.reg.AssignRole(clientID, role); err != nil {
		t.reject(clientID, err)
		return
	}
	if err := t.round.Seat(role, t.opts.StartingChips); err != nil {
		// registry and round disagree; drop the connection
		t.log.Error().Err(err).Str("role", role.String()).Msg("seat refused after role assignment")
		t.reg.Release(clientID)
		return
	}

	t.log.Info().Str("client", clientID).Str("role", role.String()).Msg("role claimed")
	t.reg.SendToClient(clientID, protocol.RoleAssigned(role))
	t.reg.Broadcast(protocol.SystemNotice(role.String() + " joined the table"))

	if !t.round.Ready() {
		t.reg.SendToClient(clientID, protocol.Waiting("waiting for "+role.Other().String()))
		return
	}
	if err := t.round.Restock(t.opts.StartingChips); err != nil {
		t.log.Error().Err(err).Msg("restock failed")
	}
	t.reg.Broadcast(protocol.GameStart)
	t.startRound()
}

func (t *Table) seated(clientID string) (game.Role, bool) {
	role, ok := t.reg.RoleOf(clientID)
	if !ok {
		t.reg.SendToClient(clientID, protocol.ErrorLine(protocol.CodeNoRole, "claim a role with MODE:PLAYER1 or MODE:PLAYER2"))
	}
	return role, ok
}

func (t *Table) startRound() {
	events, err := t.round.StartBetting()
	if err != nil {
		t.log.Error().Err(err).Str("state", string(t.round.State())).Msg("cannot start round")
		return
	}
	t.startedAt = time.Now()
	t.log.Debug().Str("round", t.round.ID()).Msg("betting open")
	t.publish(events)
}

func (t *Table) onDealerTick() {
	events, done, err := t.round.DealerStep()
	if err != nil {
		if errors.Is(err, game.ErrEmptyDeck) {
			t.abortRound(err)
			return
		}
		t.log.Debug().Err(err).Msg("dealer tick ignored")
		return
	}
	t.publish(events)

	if !done {
		t.after(t.opts.DealerDelay, dealerTick{gen: t.gen})
		return
	}
	t.settle()
}

func (t *Table) settle() {
	results, events, err := t.round.Settle()
	if err != nil {
		t.log.Error().Err(err).Msg("settlement failed")
		return
	}
	t.publish(events)
	t.record(results)

	if t.round.State() == game.StateMatchOver {
		t.reg.Broadcast(protocol.SystemNotice("match over"))
		t.log.Info().Str("round", t.round.ID()).Msg("match over")
		return
	}
	t.after(t.opts.NextRoundDelay, nextRound{gen: t.gen})
}

func (t *Table) record(results []game.Result) {
	if t.store == nil {
		return
	}
	rec := store.NewRoundRecord(t.round.ID(), t.startedAt, time.Now(),
		t.round.DealerCards(), t.round.DealerValue(), results)

	ctx, cancel := context.WithTimeout(t.ctx, 2*time.Second)
	defer cancel()
	if err := t.store.SaveRound(ctx, rec); err != nil {
		t.log.Error().Err(err).Str("round", rec.ID).Msg("failed to record round")
	}
}

// abortRound handles an exhausted deck: the deal is discarded and betting
// reopens with no chips moved.
func (t *Table) abortRound(cause error) {
	t.log.Error().Err(cause).Str("round", t.round.ID()).Msg("round aborted")
	t.gen++
	t.reg.Broadcast(protocol.SystemNotice("round aborted, bets returned"))
	events, err := t.round.Abort()
	if err != nil {
		t.log.Error().Err(err).Msg("cannot reopen betting")
		return
	}
	t.startedAt = time.Now()
	t.publish(events)
}

func (t *Table) logTransition(from, to game.State) {
	t.log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("state change")
}

func (t *Table) reject(clientID string, err error) {
	code := protocol.CodeWrongState
	switch {
	case errors.Is(err, hub.ErrRoleTaken):
		code = protocol.CodeRoleTaken
	case errors.Is(err, hub.ErrAlreadySeated):
		code = protocol.CodeAlreadySeated
	case errors.Is(err, game.ErrInvalidBet):
		code = protocol.CodeInvalidBet
	case errors.Is(err, game.ErrAlreadyBet):
		code = protocol.CodeAlreadyBet
	case errors.Is(err, game.ErrNotYourTurn):
		code = protocol.CodeNotYourTurn
	case errors.Is(err, game.ErrNotSeated), errors.Is(err, hub.ErrUnknownClient):
		code = protocol.CodeNoRole
	}
	t.log.Debug().Str("client", clientID).Str("code", code).Err(err).Msg("intent rejected")
	t.reg.SendToClient(clientID, protocol.ErrorLine(code, err.Error()))
}

func (t *Table) seatSummary() string {
	var free []string
	for _, role := range game.Roles {
		if _, ok := t.round.Participant(role); !ok {
			free = append(free, role.String())
		}
	}
	switch len(free) {
	case 0:
		return "table full, watching"
	case len(game.Roles):
		return "choose a role: PLAYER1 or PLAYER2"
	default:
		return "opponent waiting, claim " + free[0]
	}
}
