package protocol

import (
	"strconv"
	"strings"

	"github.com/calvinwijaya/blackjack-duel/internal/game"
)

// Error codes sent in ERROR: lines.
const (
	CodeRoleTaken     = "ROLE_TAKEN"
	CodeAlreadySeated = "ALREADY_SEATED"
	CodeNoRole        = "NO_ROLE"
	CodeInvalidBet    = "INVALID_BET"
	CodeAlreadyBet    = "ALREADY_BET"
	CodeNotYourTurn   = "NOT_YOUR_TURN"
	CodeWrongState    = "WRONG_STATE"
)

const GameStart = "GAME:START"

// Encode renders a game event as a single outbound line.
func Encode(e game.Event) string {
	switch e.Kind {
	case game.EventReset:
		return "GAME:RESET"
	case game.EventBettingOpen:
		return "INFO:BETTING"
	case game.EventBet:
		return "GAME:BET:" + e.Seat + ":" + strconv.Itoa(e.Amount)
	case game.EventHand:
		return "GAME:CARD:" + e.Seat + ":" + Cards(e.Cards)
	case game.EventTurn:
		return "GAME:TURN:" + e.Seat
	case game.EventBust:
		return "GAME:BUST:" + e.Seat
	case game.EventResult:
		return "GAME:RESULT:" + e.Seat + ":" + string(e.Outcome) + ":" + strconv.Itoa(e.Amount)
	case game.EventChips:
		return "CHIPS:" + e.Seat + ":" + strconv.Itoa(e.Amount)
	case game.EventMatchOver:
		return "GAME:OVER:" + e.Seat
	default:
		return ""
	}
}

// EncodeAll renders events in order, skipping any that have no line form.
func EncodeAll(events []game.Event) []string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		if line := Encode(e); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Cards joins card tokens with commas.
func Cards(cards []game.Card) string {
	tokens := make([]string, len(cards))
	for i, c := range cards {
		tokens[i] = c.String()
	}
	return strings.Join(tokens, ",")
}

func Waiting(text string) string { return "WAITING:" + text }

func RoleAssigned(r game.Role) string { return "GAME:ROLE:" + r.String() }

func ChatLine(from, text string) string { return "CHAT:" + from + ": " + text }

func SystemNotice(text string) string { return "CHAT:[SYSTEM] " + text }

func ErrorLine(code, text string) string { return "ERROR:" + code + ":" + text }
