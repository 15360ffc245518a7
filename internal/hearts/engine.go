package hearts

import "github.com/udisondev/boardlink/internal/cards"

const (
	CardsPerHand = 13
	CardsPerPass = 3
	PointsInHand = 26
	PointsInGame = 100
)

// PassDirection is the direction a hand's passed cards travel. Next steps
// Left→Right→Across and back to Left; it never returns PassNone.
type PassDirection int

const (
	PassNone PassDirection = iota
	PassLeft
	PassRight
	PassAcross
	numPassDirections
)

// Next advances to the following direction in the cycle, wrapping after
// Across back to Left. PassNone is never returned, so it is only ever the
// starting value handed to NewHand, and no hand is dealt without a pass.
func (d PassDirection) Next() PassDirection {
	n := d + 1
	if n >= numPassDirections {
		return PassLeft
	}
	return n
}

// receiver returns the seat that receives a pass from seat in this
// direction.
func (d PassDirection) receiver(seat int) int {
	switch d {
	case PassLeft:
		return (seat + 1) % NumPlayers
	case PassRight:
		return (seat + NumPlayers - 1) % NumPlayers
	case PassAcross:
		return (seat + 2) % NumPlayers
	default:
		return seat
	}
}

// Engine owns one hand's worth of Hearts state.
type Engine struct {
	Hands         [NumPlayers][]cards.Card
	PassDirection PassDirection
	Passed        [NumPlayers][]cards.Card
	AllPassed     [NumPlayers]bool
	HeartsBroken  bool
	Trick         *Trick
	Turn          int
	HandPoints    [NumPlayers]int
}

// NewHand deals a fresh shuffled deck and advances the pass direction to
// previousDirection.Next(); NewHand(PassNone) deals a PassLeft hand.
func NewHand(previousDirection PassDirection) *Engine {
	deck := cards.FullDeck()
	cards.Shuffle(deck)
	hands := cards.Deal(deck, NumPlayers)
	var out [NumPlayers][]cards.Card
	copy(out[:], hands)

	return &Engine{
		Hands:         out,
		PassDirection: previousDirection.Next(),
		Trick:         NewTrick(),
	}
}

// AutoPass mirrors HeartsGetAutoPass: a placeholder heuristic that simply
// passes the hand's first three cards (the original is itself a stubbed
// "TODO!" — preserved here rather than inventing a stronger heuristic the
// source never implemented).
func AutoPass(hand []cards.Card) [CardsPerPass]cards.Card {
	var out [CardsPerPass]cards.Card
	copy(out[:], hand[:CardsPerPass])
	return out
}

// ProcessPass records seat's 3-card pass. Once all four seats have passed,
// ApplyPasses exchanges the cards and returns the seat holding the 2 of
// Clubs, who leads the first trick.
func (e *Engine) ProcessPass(seat int, passCards [CardsPerPass]cards.Card) {
	e.Passed[seat] = passCards[:]
	for _, c := range passCards {
		e.Hands[seat] = cards.Remove(e.Hands[seat], c)
	}
	e.AllPassed[seat] = true
}

// AllPlayersPassed reports whether every seat has submitted its pass.
func (e *Engine) AllPlayersPassed() bool {
	for _, ok := range e.AllPassed {
		if !ok {
			return false
		}
	}
	return true
}

// ApplyPasses exchanges the collected passes and returns the seat holding
// the 2 of Clubs (who opens the first trick). With PassDirection ==
// PassNone no cards are exchanged; NewHand never deals such a hand.
func (e *Engine) ApplyPasses() int {
	if e.PassDirection != PassNone {
		for seat, passCards := range e.Passed {
			receiver := e.PassDirection.receiver(seat)
			e.Hands[receiver] = append(e.Hands[receiver], passCards...)
		}
	}
	for seat, hand := range e.Hands {
		if cards.Contains(hand, cards.TwoOfClubs) {
			e.Turn = seat
			return seat
		}
	}
	panic("hearts: no seat holds the 2 of Clubs after pass")
}

// PlayCard records seat's card and returns the trick winner and whether
// the trick just completed. Neither PlayCard nor its caller in
// internal/sessions checks that the first trick opens with the 2 of Clubs
// or bars Hearts and the Queen of Spades from it; ApplyPasses only makes
// the 2-of-Clubs holder the first to play.
func (e *Engine) PlayCard(seat int, card cards.Card) (winner int, finished bool) {
	if !e.HeartsBroken && (card == QueenOfSpades || card.Suit() == cards.Hearts) {
		e.HeartsBroken = true
	}
	e.Trick.Set(seat, card)
	e.Hands[seat] = cards.Remove(e.Hands[seat], card)
	e.Turn = (e.Turn + 1) % NumPlayers

	if !e.Trick.IsFinished() {
		return -1, false
	}

	w := e.Trick.Winner()
	e.Turn = w
	e.HandPoints[w] += e.Trick.Points()
	e.Trick.Reset()
	return w, true
}

// HandDone reports whether every seat has emptied its hand.
func (e *Engine) HandDone() bool {
	for _, h := range e.Hands {
		if len(h) > 0 {
			return false
		}
	}
	return true
}

// ApplyShootTheMoon returns the hand's adjusted points per spec.md's rule:
// if one seat collected all 26 points, that seat scores 0 and all others
// score 26; otherwise handPoints is returned unchanged.
func ApplyShootTheMoon(handPoints [NumPlayers]int) [NumPlayers]int {
	for _, p := range handPoints {
		if p >= PointsInHand {
			var out [NumPlayers]int
			for i := range out {
				out[i] = PointsInHand
			}
			for i, hp := range handPoints {
				if hp == p {
					out[i] = 0
				}
			}
			return out
		}
	}
	return handPoints
}

// AutoCard picks the card a computer-player seat plays: follow suit if
// possible (highest card under a played-higher-card dodge is not modeled
// by the source — WinXP's CardTrick::GetAutoCard is a simple
// follow-then-dump heuristic, reproduced here), else dump the highest
// Heart/point card to avoid carrying points, preserving hearts until
// broken like the source's pointsBroken guard.
func (t *Trick) AutoCard(hand []cards.Card, heartsBroken bool) cards.Card {
	if !t.IsEmpty() {
		leadSuit := t.LeadSuit()
		if card, ok := cards.HighestOfSuit(hand, leadSuit); ok {
			return card
		}
		// Void in lead suit: dump highest point card if safe to do so.
		if card, ok := cards.HighestOfSuit(hand, cards.Spades); ok && card == QueenOfSpades {
			return card
		}
		if card, ok := cards.HighestOfSuit(hand, cards.Hearts); ok {
			return card
		}
		return highestCard(hand)
	}

	// Leading: avoid Hearts/Q-spades until broken, unless hand has nothing else.
	if !heartsBroken {
		for _, c := range hand {
			if c != QueenOfSpades && c.Suit() != cards.Hearts {
				return lowestNonPointCard(hand)
			}
		}
	}
	return lowestCard(hand)
}

func highestCard(hand []cards.Card) cards.Card {
	best := hand[0]
	for _, c := range hand[1:] {
		if c.Rank() > best.Rank() {
			best = c
		}
	}
	return best
}

func lowestCard(hand []cards.Card) cards.Card {
	best := hand[0]
	for _, c := range hand[1:] {
		if c.Rank() < best.Rank() {
			best = c
		}
	}
	return best
}

func lowestNonPointCard(hand []cards.Card) cards.Card {
	var best cards.Card = -1
	for _, c := range hand {
		if c == QueenOfSpades || c.Suit() == cards.Hearts {
			continue
		}
		if best == -1 || c.Rank() < best.Rank() {
			best = c
		}
	}
	if best == -1 {
		return lowestCard(hand)
	}
	return best
}
