package game

type Outcome string

const (
	OutcomeBust      Outcome = "BUST"
	OutcomeBlackjack Outcome = "BLACKJACK"
	OutcomeWin       Outcome = "WIN"
	OutcomePush      Outcome = "PUSH"
	OutcomeLose      Outcome = "LOSE"
)

// Payout compares one participant hand against the dealer and returns the
// outcome and chip delta for bet. Wins pay even money, a natural that the
// dealer does not match pays 3:2 rounded down.
func Payout(playerValue, playerCards, dealerValue, dealerCards, bet int) (Outcome, int) {
	playerNatural := playerValue == 21 && playerCards == 2
	dealerNatural := dealerValue == 21 && dealerCards == 2

	switch {
	case playerValue > 21:
		return OutcomeBust, -bet
	case playerNatural && !dealerNatural:
		return OutcomeBlackjack, bet * 3 / 2
	case dealerValue > 21:
		return OutcomeWin, bet
	case playerValue == dealerValue:
		return OutcomePush, 0
	case playerValue > dealerValue:
		return OutcomeWin, bet
	default:
		return OutcomeLose, -bet
	}
}

// Result is one participant's settlement.
type Result struct {
	Role    Role
	Bet     int
	Cards   []Card
	Value   int
	Outcome Outcome
	Delta   int
	Chips   int
}
