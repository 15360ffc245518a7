package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardSuitRank(t *testing.T) {
	c := New(Hearts, RankAce)
	assert.Equal(t, Hearts, c.Suit())
	assert.Equal(t, RankAce, c.Rank())
}

func TestFullDeckDealEvenly(t *testing.T) {
	deck := FullDeck()
	require.Len(t, deck, 52)

	hands := Deal(deck, 4)
	require.Len(t, hands, 4)
	seen := map[Card]bool{}
	for _, h := range hands {
		assert.Len(t, h, 13)
		for _, c := range h {
			assert.False(t, seen[c], "card %v dealt twice", c)
			seen[c] = true
		}
	}
	assert.Len(t, seen, 52)
}

func TestShuffleIsPermutation(t *testing.T) {
	deck := FullDeck()
	before := append([]Card(nil), deck...)
	Shuffle(deck)

	assert.ElementsMatch(t, before, deck)
}

func TestRemoveAndContains(t *testing.T) {
	hand := []Card{New(Clubs, 0), New(Spades, RankQueen)}
	assert.True(t, Contains(hand, New(Spades, RankQueen)))

	hand = Remove(hand, New(Spades, RankQueen))
	assert.False(t, Contains(hand, New(Spades, RankQueen)))
	assert.Len(t, hand, 1)
}

func TestHighestLowestOfSuit(t *testing.T) {
	hand := []Card{New(Hearts, 2), New(Hearts, RankKing), New(Clubs, RankAce)}

	high, ok := HighestOfSuit(hand, Hearts)
	require.True(t, ok)
	assert.Equal(t, RankKing, high.Rank())

	low, ok := LowestOfSuit(hand, Hearts)
	require.True(t, ok)
	assert.Equal(t, 2, low.Rank())

	_, ok = HighestOfSuit(hand, Diamonds)
	assert.False(t, ok)
}

func TestQueenOfSpadesAndTwoOfClubsConstants(t *testing.T) {
	assert.Equal(t, Spades, QueenOfSpades.Suit())
	assert.Equal(t, RankQueen, QueenOfSpades.Rank())
	assert.Equal(t, Clubs, TwoOfClubs.Suit())
	assert.Equal(t, 0, TwoOfClubs.Rank())
}
