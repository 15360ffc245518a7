package spades

import "github.com/udisondev/boardlink/internal/cards"

// AutoCard picks the card a computer-player seat plays, ported bit-for-bit
// from CardTrick::GetAutoCard, per the Open Question in spec.md §9: the
// leading/non-nil/unbroken branch's choice of "highest non-Spade card" is
// preserved as-is, not revised.
func (t *Trick) AutoCard(hand []cards.Card, bid int, doubleNilBid int, spadesBroken bool) cards.Card {
	if bid == doubleNilBid {
		bid = 0
	}

	if !t.IsEmpty() {
		leadSuit := t.LeadSuit()
		handCountLead := countSuit(hand, leadSuit)

		if handCountLead > 0 {
			if bid == 0 {
				if t.highestPlayedRank(cards.Spades) != -1 {
					return highest(hand, leadSuit, 13)
				}
				card := highest(hand, leadSuit, t.highestPlayedRank(leadSuit))
				if card == unset {
					return highest(hand, leadSuit, 13)
				}
				return card
			}

			if t.highestPlayedRank(cards.Spades) != -1 {
				return lowest(hand, leadSuit)
			}
			card := highest(hand, leadSuit, 13)
			if card.Rank() < t.highestPlayedRank(leadSuit) {
				return lowest(hand, leadSuit)
			}
			return card
		}

		// No card of the lead suit.
		handCountSpades := countSuit(hand, cards.Spades)

		if bid == 0 {
			if handCountSpades > 0 {
				if highestPlayed := t.highestPlayedRank(cards.Spades); highestPlayed != -1 {
					if card := highest(hand, cards.Spades, highestPlayed); card != unset {
						return card
					}
				}
			}
			if handCountSpades == len(hand) {
				return highest(hand, cards.Spades, 13)
			}
			return highestNotOfSuit(hand, cards.Spades)
		}

		if handCountSpades > 0 {
			highestPlayed := t.highestPlayedRank(cards.Spades)
			card := highest(hand, cards.Spades, 13)
			if highestPlayed != -1 && card.Rank() < highestPlayed {
				if alt := lowestNotOfSuit(hand, cards.Spades); alt != unset {
					return alt
				}
				return lowest(hand, cards.Spades)
			}
			return card
		}

		// Play lowest card in hand.
		card := unset
		lowestRank := 13
		for _, c := range hand {
			if c.Rank() < lowestRank {
				card = c
				lowestRank = c.Rank()
			}
		}
		return card
	}

	if bid == 0 {
		if card := lowestNotOfSuit(hand, cards.Spades); card != unset {
			return card
		}
		return lowest(hand, cards.Spades)
	}

	// Leading, non-nil, not forced to dump: play highest card, avoiding
	// Spades unless they are broken or the hand is all Spades.
	excludeSpades := !spadesBroken && !allOfSuit(hand, cards.Spades)
	card := unset
	highestRank := -1
	for _, c := range hand {
		if excludeSpades && c.Suit() == cards.Spades {
			continue
		}
		if c.Rank() > highestRank {
			card = c
			highestRank = c.Rank()
		}
	}
	return card
}

func countSuit(hand []cards.Card, suit cards.Suit) int {
	n := 0
	for _, c := range hand {
		if c.Suit() == suit {
			n++
		}
	}
	return n
}

// highest returns the highest card of suit in hand with rank strictly
// below rankUnder, or unset.
func highest(hand []cards.Card, suit cards.Suit, rankUnder int) cards.Card {
	card := unset
	highestRank := -1
	for _, c := range hand {
		if c.Suit() != suit {
			continue
		}
		if c.Rank() < rankUnder && c.Rank() > highestRank {
			card = c
			highestRank = c.Rank()
		}
	}
	return card
}

func lowest(hand []cards.Card, suit cards.Suit) cards.Card {
	card := unset
	lowestRank := 13
	for _, c := range hand {
		if c.Suit() != suit {
			continue
		}
		if c.Rank() < lowestRank {
			card = c
			lowestRank = c.Rank()
		}
	}
	return card
}

func highestNotOfSuit(hand []cards.Card, suit cards.Suit) cards.Card {
	card := unset
	highestRank := -1
	for _, c := range hand {
		if c.Suit() == suit {
			continue
		}
		if c.Rank() > highestRank {
			card = c
			highestRank = c.Rank()
		}
	}
	return card
}

func lowestNotOfSuit(hand []cards.Card, suit cards.Suit) cards.Card {
	card := unset
	lowestRank := 13
	for _, c := range hand {
		if c.Suit() == suit {
			continue
		}
		if c.Rank() < lowestRank {
			card = c
			lowestRank = c.Rank()
		}
	}
	return card
}

func allOfSuit(hand []cards.Card, suit cards.Suit) bool {
	for _, c := range hand {
		if c.Suit() != suit {
			return false
		}
	}
	return true
}
