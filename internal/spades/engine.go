package spades

import "github.com/udisondev/boardlink/internal/cards"

// BidState is one seat's progress through the bid phase (spec.md §4.3.1).
type BidState int

const (
	HandStart BidState = iota
	ShownCards
	Bid
)

// SeatBid tracks a seat's bidding progress and final value.
type SeatBid struct {
	State BidState
	Value int // meaningful once State == Bid; may equal DoubleNilBid
}

// Engine owns one hand's worth of Spades state: deal, bids, the running
// trick, and per-seat trick counts. The game-spanning team scores/bags
// live in the caller (internal/sessions' spadesSession), which persists
// across hands.
type Engine struct {
	Hands       [NumPlayers][]cards.Card
	Dealer      int
	Bids        [NumPlayers]SeatBid
	Trick       *Trick
	TricksTaken [NumPlayers]int
	SpadesBroken bool
}

// NewHand deals a fresh shuffled deck and advances the dealer forward one
// seat from the previous hand (spec.md §4.3.1 "dealer rotates forward").
func NewHand(previousDealer int) *Engine {
	deck := cards.FullDeck()
	cards.Shuffle(deck)
	hands := cards.Deal(deck, NumPlayers)

	var out [NumPlayers][]cards.Card
	copy(out[:], hands)

	return &Engine{
		Hands:  out,
		Dealer: (previousDealer + 1) % NumPlayers,
		Trick:  NewTrick(),
	}
}

// BiddingOrder returns seats in bid order: starting left of the dealer,
// clockwise, dealer bids last (spec.md §4.3.1).
func (e *Engine) BiddingOrder() [NumPlayers]int {
	var order [NumPlayers]int
	for i := 0; i < NumPlayers; i++ {
		order[i] = (e.Dealer + 1 + i) % NumPlayers
	}
	return order
}

// PlayCard records seat's card, marking Spades broken whenever that card
// is a Spade, and, if the trick is now complete, resolves the winner and
// starts a fresh trick. Returns the winning seat and true if the trick
// completed.
func (e *Engine) PlayCard(seat int, card cards.Card) (winner int, finished bool) {
	if card.Suit() == cards.Spades {
		e.SpadesBroken = true
	}
	e.Trick.Set(seat, card)
	e.Hands[seat] = cards.Remove(e.Hands[seat], card)

	if !e.Trick.IsFinished() {
		return -1, false
	}

	w := e.Trick.Winner()
	e.TricksTaken[w]++
	e.Trick.Reset()
	return w, true
}

// CanLeadSpades reports whether seat may lead with a Spade: only once
// broken, or when the hand holds nothing else (spec.md §4.3.1).
func CanLeadSpades(hand []cards.Card, spadesBroken bool) bool {
	return spadesBroken || allOfSuit(hand, cards.Spades)
}
