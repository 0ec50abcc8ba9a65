// Package vote implements the 3-way majority decision over words sampled
// from the three replicas. Voting is pure computation: it never touches a
// replica and holds no state between reads.
package vote

import (
	"fmt"

	"github.com/killianstorm/ariane/internal/errors"
	"github.com/killianstorm/ariane/internal/model"
)

// Vote selects the majority word among a, b and c, compared over the true
// word width. The decision order is fixed: unanimous, then A/B agreeing
// (outlier C), then B/C agreeing (outlier A), then A/C agreeing (outlier B).
// If all three words differ pairwise no majority exists and a VotingFailure
// error is returned; the caller never receives stale or arbitrary data.
func Vote(g model.Geometry, addr uint, a, b, c model.Word) (model.VoteResult, error) {
	ab := g.Equal(a, b)
	bc := g.Equal(b, c)
	ac := g.Equal(a, c)

	switch {
	case ab && bc && ac:
		return model.VoteResult{Word: a, Outlier: model.ReplicaNone, Unanimous: true}, nil
	case ab:
		return model.VoteResult{Word: a, Outlier: model.ReplicaC}, nil
	case bc:
		return model.VoteResult{Word: b, Outlier: model.ReplicaA}, nil
	case ac:
		return model.VoteResult{Word: a, Outlier: model.ReplicaB}, nil
	default:
		return model.VoteResult{}, errors.VotingFailure(addr,
			fmt.Sprintf("%x", []byte(a)),
			fmt.Sprintf("%x", []byte(b)),
			fmt.Sprintf("%x", []byte(c)))
	}
}
