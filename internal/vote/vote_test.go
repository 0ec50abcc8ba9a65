package vote_test

import (
	"testing"

	"github.com/killianstorm/ariane/internal/errors"
	"github.com/killianstorm/ariane/internal/model"
	"github.com/killianstorm/ariane/internal/vote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geom32(t *testing.T) model.Geometry {
	t.Helper()
	g, err := model.NewGeometry(32, 16)
	require.NoError(t, err)
	return g
}

func TestVoteDecisions(t *testing.T) {
	g := geom32(t)

	x := model.Word{0x01, 0x02, 0x03, 0x04}
	y := model.Word{0xAA, 0xBB, 0xCC, 0xDD}

	tests := []struct {
		name        string
		a, b, c     model.Word
		want        model.Word
		wantOutlier model.Replica
		unanimous   bool
	}{
		{"all agree", x, x, x, x, model.ReplicaNone, true},
		{"c is outlier", x, x, y, x, model.ReplicaC, false},
		{"a is outlier", y, x, x, x, model.ReplicaA, false},
		{"b is outlier", x, y, x, x, model.ReplicaB, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := vote.Vote(g, 0, tt.a, tt.b, tt.c)
			require.NoError(t, err)
			assert.True(t, g.Equal(tt.want, result.Word))
			assert.Equal(t, tt.wantOutlier, result.Outlier)
			assert.Equal(t, tt.unanimous, result.Unanimous)
		})
	}
}

func TestVoteMajorityValueWinsEvenIfWrong(t *testing.T) {
	g := geom32(t)

	correct := model.Word{0x01, 0x02, 0x03, 0x04}
	wrong := model.Word{0xDE, 0xAD, 0xBE, 0xEF}

	// Two replicas holding the same wrong value outvote the correct one:
	// the design tolerates one faulty replica, not two.
	result, err := vote.Vote(g, 0, wrong, wrong, correct)
	require.NoError(t, err)
	assert.True(t, g.Equal(wrong, result.Word))
	assert.Equal(t, model.ReplicaC, result.Outlier)
}

func TestVoteFailureAllDistinct(t *testing.T) {
	g := geom32(t)

	a := model.Word{0x01, 0x00, 0x00, 0x00}
	b := model.Word{0x02, 0x00, 0x00, 0x00}
	c := model.Word{0x03, 0x00, 0x00, 0x00}

	_, err := vote.Vote(g, 7, a, b, c)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVotingFailure, errors.GetCode(err))
}

func TestVoteComparesTrueWidthOnly(t *testing.T) {
	g, err := model.NewGeometry(12, 4)
	require.NoError(t, err)

	a := model.Word{0x34, 0x02}
	b := model.Word{0x34, 0x02}
	c := model.Word{0x34, 0xF2} // differs only in padding bits

	result, err := vote.Vote(g, 0, a, b, c)
	require.NoError(t, err)
	assert.True(t, result.Unanimous)
	assert.Equal(t, model.ReplicaNone, result.Outlier)
}
