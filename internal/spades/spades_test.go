package spades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/boardlink/internal/cards"
)

func TestTrickWinnerHighestSpadeBeatsLeadSuit(t *testing.T) {
	tr := NewTrick()
	tr.Set(0, cards.New(cards.Hearts, cards.RankAce))
	tr.Set(1, cards.New(cards.Spades, 2))
	tr.Set(2, cards.New(cards.Hearts, cards.RankKing))
	tr.Set(3, cards.New(cards.Clubs, cards.RankAce))

	assert.Equal(t, 1, tr.Winner())
}

func TestTrickWinnerHighestLeadSuitWhenNoSpades(t *testing.T) {
	tr := NewTrick()
	tr.Set(0, cards.New(cards.Hearts, 2))
	tr.Set(1, cards.New(cards.Hearts, cards.RankAce))
	tr.Set(2, cards.New(cards.Clubs, cards.RankKing))
	tr.Set(3, cards.New(cards.Hearts, cards.RankKing))

	assert.Equal(t, 1, tr.Winner())
}

func TestFollowsSuit(t *testing.T) {
	tr := NewTrick()
	tr.Set(0, cards.New(cards.Hearts, 5))

	hand := []cards.Card{cards.New(cards.Hearts, 2), cards.New(cards.Clubs, 3)}
	assert.True(t, tr.FollowsSuit(cards.New(cards.Hearts, 2), hand))
	assert.False(t, tr.FollowsSuit(cards.New(cards.Clubs, 3), hand))

	voidHand := []cards.Card{cards.New(cards.Clubs, 3)}
	assert.True(t, tr.FollowsSuit(cards.New(cards.Clubs, 3), voidHand))
}

func TestNewHandDealsEvenlyAndRotatesDealer(t *testing.T) {
	e := NewHand(3)
	assert.Equal(t, 0, e.Dealer)
	for _, h := range e.Hands {
		assert.Len(t, h, 13)
	}
}

func TestBiddingOrderStartsLeftOfDealerEndsOnDealer(t *testing.T) {
	e := &Engine{Dealer: 1}
	order := e.BiddingOrder()
	assert.Equal(t, [4]int{2, 3, 0, 1}, order)
}

func TestPlayCardResolvesTrickAndTracksSpadesBroken(t *testing.T) {
	e := &Engine{Trick: NewTrick()}
	for i := range e.Hands {
		e.Hands[i] = []cards.Card{cards.New(cards.Hearts, i)}
	}

	_, finished := e.PlayCard(0, cards.New(cards.Hearts, 2))
	assert.False(t, finished)
	assert.False(t, e.SpadesBroken)

	e.Hands[1] = []cards.Card{cards.New(cards.Spades, 0)}
	_, finished = e.PlayCard(1, cards.New(cards.Spades, 0))
	assert.False(t, finished)
	assert.True(t, e.SpadesBroken)

	e.Hands[2] = []cards.Card{cards.New(cards.Hearts, 3)}
	e.Hands[3] = []cards.Card{cards.New(cards.Hearts, 1)}
	winner, finished := e.PlayCard(2, cards.New(cards.Hearts, 3))
	assert.False(t, finished)
	winner, finished = e.PlayCard(3, cards.New(cards.Hearts, 1))
	require.True(t, finished)
	assert.Equal(t, 1, winner) // only Spade played takes it
	assert.Equal(t, 1, e.TricksTaken[1])
}

func TestBagCarryModTenWithPenalty(t *testing.T) {
	bids := [4]int{5, 0, 0, 0}
	tricks := [4]int{8, 0, 0, 0} // team0 bid 5, took 8 => 3 overtricks
	teamBags := [2]int{8, 0}     // already carrying 8 bags

	scores := CalculateTrickScore(bids, tricks, teamBags, true)
	assert.Equal(t, 1, scores[0].Bags, "8+3=11, mod 10 = 1")
	assert.Equal(t, -100, scores[0].PointsBagPenalty)
}

func TestNilSuccessAndFailure(t *testing.T) {
	bids := [4]int{NilBid, DoubleNilBid, 3, 0}
	tricks := [4]int{0, 2, 10, 3}
	scores := CalculateTrickScore(bids, tricks, [2]int{0, 0}, true)

	assert.Equal(t, 100, scores[0].PointsNil, "seat0 nil succeeded")
	assert.Equal(t, -300, scores[1].PointsNil, "seat1 double-nil failed (-200); seat3's bid of 0 is a nil and failed (-100)")
}

func TestGameOverThresholds(t *testing.T) {
	assert.True(t, GameOver([2]int{500, 0}))
	assert.True(t, GameOver([2]int{0, -200}))
	assert.False(t, GameOver([2]int{100, -50}))
}

func TestAutoBidAllVoidSuitsIsHighBid(t *testing.T) {
	hand := []cards.Card{
		cards.New(cards.Spades, cards.RankAce),
		cards.New(cards.Spades, cards.RankKing),
		cards.New(cards.Spades, 5),
		cards.New(cards.Spades, 4),
		cards.New(cards.Spades, 3),
		cards.New(cards.Spades, 2),
		cards.New(cards.Spades, 6),
		cards.New(cards.Spades, 7),
		cards.New(cards.Spades, 8),
		cards.New(cards.Spades, 9),
		cards.New(cards.Spades, cards.RankJack),
		cards.New(cards.Spades, cards.RankQueen),
		cards.New(cards.Hearts, 0),
	}
	bid := AutoBid(hand)
	assert.Greater(t, bid, 5)
}

func TestAutoCardLeadsHighestCardWhenSpadesBroken(t *testing.T) {
	tr := NewTrick()
	hand := []cards.Card{cards.New(cards.Hearts, 2), cards.New(cards.Spades, cards.RankAce)}
	card := tr.AutoCard(hand, 3, DoubleNilBid, true)
	// Leading, non-nil, broken: highest card overall is picked.
	assert.Equal(t, cards.New(cards.Spades, cards.RankAce), card)
}

func TestCanLeadSpades(t *testing.T) {
	allSpades := []cards.Card{cards.New(cards.Spades, 2), cards.New(cards.Spades, 3)}
	mixed := []cards.Card{cards.New(cards.Spades, 2), cards.New(cards.Hearts, 3)}

	assert.True(t, CanLeadSpades(allSpades, false))
	assert.False(t, CanLeadSpades(mixed, false))
	assert.True(t, CanLeadSpades(mixed, true))
}
