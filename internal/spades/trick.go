// Package spades implements the Spades engine (C3): deal, bid phase,
// trick-taking, scoring, and the autobid/autoplay heuristics. Ported from
// original_source/InternetGamesServer/WinCommon/SpadesUtil.hpp's CardTrick
// template, specialized here to cards.Card since Go has no template
// instantiation step.
package spades

import "github.com/udisondev/boardlink/internal/cards"

const NumPlayers = 4

// unset marks an as-yet-unplayed trick slot.
const unset cards.Card = -1

// Trick tracks the four cards played this trick, in seat order.
type Trick struct {
	leadCard    cards.Card
	playerCards [NumPlayers]cards.Card
}

// NewTrick returns an empty trick.
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

// Set records seat's played card, establishing the lead suit if this is
// the first card of the trick.
func (t *Trick) Set(seat int, card cards.Card) {
	if t.IsEmpty() {
		t.leadCard = card
	}
	t.playerCards[seat] = card
}

// LeadSuit returns the trick's lead suit; only meaningful once non-empty.
func (t *Trick) LeadSuit() cards.Suit { return t.leadCard.Suit() }

// FollowsSuit reports whether playing card is legal given hand: it must
// match the lead suit unless hand holds none of that suit.
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

// IsFinished reports whether all four seats have played.
func (t *Trick) IsFinished() bool {
	for _, c := range t.playerCards {
		if c == unset {
			return false
		}
	}
	return true
}

// Winner returns the seat that takes the trick: the highest Spade if any
// was played, else the highest card of the lead suit.
func (t *Trick) Winner() int {
	hasSpades := false
	for _, c := range t.playerCards {
		if c.Suit() == cards.Spades {
			hasSpades = true
			break
		}
	}
	targetSuit := t.LeadSuit()
	if hasSpades {
		targetSuit = cards.Spades
	}

	maxRank := -1
	winner := -1
	for seat, c := range t.playerCards {
		if c.Suit() != targetSuit {
			continue
		}
		if c.Rank() >= maxRank {
			maxRank = c.Rank()
			winner = seat
		}
	}
	return winner
}

// highestPlayedRank returns the highest rank played in suit this trick, or
// -1 if none.
func (t *Trick) highestPlayedRank(suit cards.Suit) int {
	if t.IsEmpty() {
		return -1
	}
	highest := -1
	for _, c := range t.playerCards {
		if c == unset || c.Suit() != suit {
			continue
		}
		if c.Rank() > highest {
			highest = c.Rank()
		}
	}
	return highest
}
