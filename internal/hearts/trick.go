// Package hearts implements the Hearts engine (C4): deal, card-passing,
// trick-taking with the hearts-broken rule, shoot-the-moon scoring, and a
// simple autoplay heuristic. Ported from
// original_source/InternetGamesServer/WinXP/HeartsMatch.cpp.
package hearts

import "github.com/udisondev/boardlink/internal/cards"

const NumPlayers = 4

const unset cards.Card = -1

// Trick tracks the four cards played this trick, in seat order.
type Trick struct {
	leadCard    cards.Card
	playerCards [NumPlayers]cards.Card
}

func NewTrick() *Trick {
	t := &Trick{}
	t.Reset()
	return t
}

func (t *Trick) Reset() {
	t.leadCard = unset
	for i := range t.playerCards {
		t.playerCards[i] = unset
	}
}

func (t *Trick) IsEmpty() bool { return t.leadCard == unset }

func (t *Trick) Set(seat int, card cards.Card) {
	if t.IsEmpty() {
		t.leadCard = card
	}
	t.playerCards[seat] = card
}

func (t *Trick) LeadSuit() cards.Suit { return t.leadCard.Suit() }

func (t *Trick) FollowsSuit(card cards.Card, hand []cards.Card) bool {
	if t.IsEmpty() {
		return true
	}
	leadSuit := t.LeadSuit()
	if card.Suit() == leadSuit {
		return true
	}
	return !cards.HasSuit(hand, leadSuit)
}

func (t *Trick) IsFinished() bool {
	for _, c := range t.playerCards {
		if c == unset {
			return false
		}
	}
	return true
}

// Winner is the highest card of the lead suit — Hearts has no trump.
func (t *Trick) Winner() int {
	leadSuit := t.LeadSuit()
	maxRank := -1
	winner := -1
	for seat, c := range t.playerCards {
		if c.Suit() != leadSuit {
			continue
		}
		if c.Rank() > maxRank {
			maxRank = c.Rank()
			winner = seat
		}
	}
	return winner
}

// Points is the trick's point value: 13 for the Queen of Spades, 1 per
// Heart.
func (t *Trick) Points() int {
	points := 0
	for _, c := range t.playerCards {
		if c == QueenOfSpades {
			points += 13
		} else if c.Suit() == cards.Hearts {
			points++
		}
	}
	return points
}

var QueenOfSpades = cards.New(cards.Spades, cards.RankQueen)
