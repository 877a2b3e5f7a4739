// Package protocol converts between newline-delimited text lines and typed
// values. Inbound lines become Intents; game events become outbound lines.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/calvinwijaya/blackjack-duel/internal/game"
)

var (
	ErrEmptyLine     = errors.New("empty line")
	ErrUnknownPrefix = errors.New("unknown message prefix")
	ErrMalformed     = errors.New("malformed message")
)

// Intent is a decoded client request. The set of implementations is closed.
type Intent interface{ isIntent() }

type ClaimRole struct {
	Role game.Role
}

type Chat struct {
	Text string
}

// Bet carries either a fixed Amount or All, meaning the whole balance.
type Bet struct {
	Amount int
	All    bool
}

type Hit struct{}

type Stand struct{}

func (ClaimRole) isIntent() {}
func (Chat) isIntent()      {}
func (Bet) isIntent()       {}
func (Hit) isIntent()       {}
func (Stand) isIntent()     {}

const (
	prefixMode = "MODE:"
	prefixChat = "CHAT:"
	prefixBet  = "BET:"
	lineHit    = "GAME:HIT"
	lineStand  = "GAME:STAND"
)

// Decode parses one inbound line. Trailing CR/LF and surrounding spaces are
// ignored.
func Decode(line string) (Intent, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmptyLine
	}

	switch {
	case strings.HasPrefix(line, prefixChat):
		return Chat{Text: line[len(prefixChat):]}, nil

	case strings.HasPrefix(line, prefixMode):
		name := line[len(prefixMode):]
		role, ok := game.ParseRole(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrMalformed, strings.TrimSpace(name))
		}
		return ClaimRole{Role: role}, nil

	case strings.HasPrefix(line, prefixBet):
		payload := strings.TrimSpace(line[len(prefixBet):])
		if strings.EqualFold(payload, "ALL") {
			return Bet{All: true}, nil
		}
		amount, err := strconv.Atoi(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: bet %q", ErrMalformed, payload)
		}
		return Bet{Amount: amount}, nil
	}

	switch strings.ToUpper(strings.TrimSpace(line)) {
	case lineHit:
		return Hit{}, nil
	case lineStand:
		return Stand{}, nil
	}
	return nil, ErrUnknownPrefix
}
