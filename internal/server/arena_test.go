package server

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

type ArenaTestSuite struct {
	suite.Suite
}

func TestArenaSuite(t *testing.T) {
	suite.Run(t, new(ArenaTestSuite))
}

func (suite *ArenaTestSuite) series(symbol string) *types.PriceSeries {
	return types.NewPriceSeries(symbol, types.Timeframe1Day, []types.Candle{{Time: 1}})
}

func (suite *ArenaTestSuite) TestPutAndGet() {
	arena := NewSeriesArena(4)

	id := arena.Put(suite.series("AAPL"))
	suite.NotEmpty(id)

	got, err := arena.Get(id)
	suite.Require().NoError(err)
	suite.Equal("AAPL", got.Symbol)
}

func (suite *ArenaTestSuite) TestLatestFallback() {
	arena := NewSeriesArena(4)

	arena.Put(suite.series("OLD"))
	arena.Put(suite.series("NEW"))

	for _, id := range []string{"", LatestSeriesID} {
		got, err := arena.Get(id)
		suite.Require().NoError(err)
		suite.Equal("NEW", got.Symbol, "id %q", id)
	}
}

func (suite *ArenaTestSuite) TestMissingSeries() {
	arena := NewSeriesArena(4)

	_, err := arena.Get("nope")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSeriesNotFound))

	// empty arena has no latest either
	_, err = arena.Get("")
	suite.Error(err)
}

// TestEvictionDropsOldest checks the arena never exceeds its capacity and
// evicts in insertion order.
func (suite *ArenaTestSuite) TestEvictionDropsOldest() {
	arena := NewSeriesArena(3)

	ids := make([]string, 5)
	for i := range ids {
		ids[i] = arena.Put(suite.series(fmt.Sprintf("SYM%d", i)))
	}

	suite.Equal(3, arena.Len())

	_, err := arena.Get(ids[0])
	suite.Error(err)
	_, err = arena.Get(ids[1])
	suite.Error(err)

	got, err := arena.Get(ids[4])
	suite.Require().NoError(err)
	suite.Equal("SYM4", got.Symbol)
}
