package game

import (
	"fmt"
	"strings"
)

// Role is one of the two fixed seats at the table.
type Role int

const (
	Player1 Role = iota + 1
	Player2
)

// Roles lists the seats in turn order.
var Roles = []Role{Player1, Player2}

// DealerSeat is the wire label used for the dealer's hand and turn.
const DealerSeat = "DEALER"

func (r Role) String() string {
	switch r {
	case Player1:
		return "PLAYER1"
	case Player2:
		return "PLAYER2"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func (r Role) Valid() bool {
	return r == Player1 || r == Player2
}

// Other returns the opposing seat.
func (r Role) Other() Role {
	if r == Player1 {
		return Player2
	}
	return Player1
}

// ParseRole accepts "PLAYER1"/"PLAYER2" in any case.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PLAYER1":
		return Player1, true
	case "PLAYER2":
		return Player2, true
	default:
		return 0, false
	}
}

// Participant is a seated player's ledger: chips persist across rounds,
// hand and bet do not.
type Participant struct {
	Role  Role
	Hand  Hand
	Chips int
	Bet   int
}

func NewParticipant(role Role, chips int) *Participant {
	return &Participant{Role: role, Chips: chips}
}

func (p *Participant) HasBet() bool {
	return p.Bet > 0
}

func (p *Participant) resetRound() {
	p.Hand.Clear()
	p.Bet = 0
}
