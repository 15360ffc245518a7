package spades

import (
	"math"

	"github.com/udisondev/boardlink/internal/cards"
)

// AutoBid computes a heuristic bid for hand, ported bit-for-bit from
// CardTrick::GetAutoBid: counts aces, protected honors by suit length,
// void/singleton bonuses in side suits, an extra-spade-length bonus, and a
// safety penalty when no top spade is held.
func AutoBid(hand []cards.Card) int {
	var bid float64

	var bySuit [4][]cards.Card
	for _, c := range hand {
		bySuit[c.Suit()] = append(bySuit[c.Suit()], c)
	}

	hasAceOrHighSpade := false

	for suit := cards.Suit(0); suit < 4; suit++ {
		suitCards := bySuit[suit]
		isSpade := suit == cards.Spades

		if !isSpade {
			switch len(suitCards) {
			case 0:
				bid++
				continue
			case 1:
				bid += 0.5
			}
		}

		for _, c := range suitCards {
			rank := c.Rank()

			if rank == cards.RankAce {
				bid++
				if isSpade {
					hasAceOrHighSpade = true
				}
				continue
			}

			if isSpade {
				if rank == cards.RankKing || (rank == cards.RankQueen && len(suitCards) >= 3) {
					bid++
					hasAceOrHighSpade = true
				}
			} else {
				if (rank == cards.RankKing && len(suitCards) >= 2) || (rank == cards.RankQueen && len(suitCards) >= 3) {
					bid++
				}
			}
		}
	}

	if s := len(bySuit[cards.Spades]); s > 3 {
		bid += float64(s-3) * 0.5
	}

	if !hasAceOrHighSpade {
		bid--
	}

	if bid < 0 {
		return 0
	}
	return int(math.Floor(bid))
}
