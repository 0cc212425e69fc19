package portfolio

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

type PortfolioTestSuite struct {
	suite.Suite
}

func TestPortfolioSuite(t *testing.T) {
	suite.Run(t, new(PortfolioTestSuite))
}

func (suite *PortfolioTestSuite) TestBuyDebitsCashAndRecordsTrade() {
	ledger := NewPortfolio(1000)
	ledger.SetMark(100, 1704153600)

	suite.True(ledger.Buy(5))
	suite.InDelta(500.0, ledger.Cash(), 1e-9)
	suite.InDelta(5.0, ledger.Position(), 1e-9)

	trades := ledger.Trades()
	suite.Require().Len(trades, 1)
	suite.Equal(types.TradeTypeBuy, trades[0].Type)
	suite.InDelta(100.0, trades[0].Price, 1e-9)
	suite.InDelta(5.0, trades[0].Qty, 1e-9)
	suite.Equal(int64(1704153600), trades[0].Time)
}

func (suite *PortfolioTestSuite) TestInsufficientFundsIsSilentNoOp() {
	ledger := NewPortfolio(100)
	ledger.SetMark(100, 0)

	suite.False(ledger.Buy(2))
	suite.InDelta(100.0, ledger.Cash(), 1e-9)
	suite.InDelta(0.0, ledger.Position(), 1e-9)
	suite.Empty(ledger.Trades())
}

func (suite *PortfolioTestSuite) TestInsufficientPositionIsSilentNoOp() {
	ledger := NewPortfolio(1000)
	ledger.SetMark(10, 0)

	suite.True(ledger.Buy(3))
	suite.False(ledger.Sell(5))
	suite.InDelta(3.0, ledger.Position(), 1e-9)

	trades := ledger.Trades()
	suite.Len(trades, 1)
}

func (suite *PortfolioTestSuite) TestSellCreditsCash() {
	ledger := NewPortfolio(1000)
	ledger.SetMark(100, 0)
	suite.True(ledger.Buy(5))

	ledger.SetMark(120, 60)
	suite.True(ledger.Sell(5))

	suite.InDelta(1100.0, ledger.Cash(), 1e-9)
	suite.InDelta(0.0, ledger.Position(), 1e-9)
}

// TestInvariants exercises a mixed order sequence: cash and position must
// never go negative no matter what the strategy asks for.
func (suite *PortfolioTestSuite) TestInvariants() {
	ledger := NewPortfolio(500)
	marks := []float64{50, 55, 40, 70, 65, 80}
	orders := []struct {
		buy bool
		qty float64
	}{
		{true, 4}, {false, 10}, {true, 100}, {false, 2},
		{true, -1}, {false, -3}, {true, 3}, {false, 5},
	}

	for i, order := range orders {
		ledger.SetMark(marks[i%len(marks)], int64(i*60))

		if order.buy {
			ledger.Buy(order.qty)
		} else {
			ledger.Sell(order.qty)
		}

		suite.GreaterOrEqual(ledger.Cash(), 0.0, "order %d", i)
		suite.GreaterOrEqual(ledger.Position(), 0.0, "order %d", i)
	}
}

func (suite *PortfolioTestSuite) TestTotalValueMarksPosition() {
	ledger := NewPortfolio(1000)
	ledger.SetMark(100, 0)
	suite.True(ledger.Buy(4))

	ledger.SetMark(150, 60)
	suite.InDelta(600+4*150, ledger.TotalValue(), 1e-9)
}

func (suite *PortfolioTestSuite) TestNegativeCapitalClampsToZero() {
	ledger := NewPortfolio(-50)
	suite.InDelta(0.0, ledger.Cash(), 1e-9)
}

func (suite *PortfolioTestSuite) TestTradesReturnsCopy() {
	ledger := NewPortfolio(1000)
	ledger.SetMark(10, 0)
	suite.True(ledger.Buy(1))

	trades := ledger.Trades()
	trades[0].Qty = 99

	suite.InDelta(1.0, ledger.Trades()[0].Qty, 1e-9)
}
