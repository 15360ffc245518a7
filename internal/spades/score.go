package spades

// Bid sentinel values. Seats 0..13 are real bids; DoubleNil is a negative
// sentinel meaning a nil committed before peeking at the dealt hand.
const (
	DoubleNilBid = -1
	NilBid       = 0
)

// TrickScore mirrors WinCommon/SpadesUtil.hpp's TrickScore struct: the
// final point delta for one team plus its breakdown.
type TrickScore struct {
	Points           int
	Bags             int
	PointsBase       int
	PointsNil        int
	PointsBagBonus   int
	PointsBagPenalty int
}

// WinThreshold and LossThreshold are the score bounds that end a game
// (spec.md §4.3.1, §8 "game termination").
const (
	WinThreshold  = 500
	LossThreshold = -200
)

// CalculateTrickScore computes each team's TrickScore for one completed
// hand. Team 0 is seats (0,2), team 1 is seats (1,3). playerBids[i] is a
// seat's bid: NilBid (0, not a real zero — a committed nil), DoubleNilBid,
// or 1..13; playerTricksTaken[i] is that seat's trick count for the hand;
// teamBags is each team's bag carry entering the hand.
//
// The exact per-bag point contribution in the original CalculateTrickScore
// was not available in the source this system was built from (only
// declared, never defined, in SpadesUtil.hpp); this implements spec.md
// §4.3.1's textual rule directly: combined non-nil team bid scores ±10 per
// bid point on success/failure, nil scores ±100 (double nil ±200), and
// bags accumulate modulo 10 with a flat −100 penalty on every crossing.
// Bags themselves carry no point bonus, only the penalty risk — no
// SpadesUtil.hpp source confirms a positive per-bag bonus exists, so
// PointsBagBonus is not populated here (see DESIGN.md).
func CalculateTrickScore(playerBids [4]int, playerTricksTaken [4]int, teamBags [2]int, countNilOvertricks bool) [2]TrickScore {
	var out [2]TrickScore

	for team := 0; team < 2; team++ {
		seatA, seatB := team, team+2

		teamBid := 0
		teamTricks := playerTricksTaken[seatA] + playerTricksTaken[seatB]
		anyNil := false

		for _, seat := range [2]int{seatA, seatB} {
			switch bid := playerBids[seat]; bid {
			case DoubleNilBid:
				anyNil = true
				if playerTricksTaken[seat] == 0 {
					out[team].PointsNil += 200
				} else {
					out[team].PointsNil -= 200
				}
			case NilBid:
				anyNil = true
				if playerTricksTaken[seat] == 0 {
					out[team].PointsNil += 100
				} else {
					out[team].PointsNil -= 100
				}
			default:
				teamBid += bid
			}
		}

		overtricks := 0
		if teamBid > 0 {
			if teamTricks >= teamBid {
				out[team].PointsBase = teamBid * 10
				overtricks = teamTricks - teamBid
			} else {
				out[team].PointsBase = -teamBid * 10
			}
		}

		bagsEarned := overtricks
		if anyNil && !countNilOvertricks {
			bagsEarned = 0
		}

		bags := teamBags[team] + bagsEarned
		for bags >= 10 {
			out[team].PointsBagPenalty -= 100
			bags -= 10
		}
		out[team].Bags = bags

		out[team].Points = out[team].PointsBase + out[team].PointsNil +
			out[team].PointsBagBonus + out[team].PointsBagPenalty
	}

	return out
}

// GameOver reports whether the game ends given each team's cumulative
// score: when some team reaches WinThreshold or falls to LossThreshold.
func GameOver(teamScores [2]int) bool {
	for _, s := range teamScores {
		if s >= WinThreshold || s <= LossThreshold {
			return true
		}
	}
	return false
}
