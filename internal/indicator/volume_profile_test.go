package indicator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

type VolumeProfileTestSuite struct {
	suite.Suite
	vp Indicator
}

func (suite *VolumeProfileTestSuite) SetupTest() {
	suite.vp = NewVolumeProfile()
}

func TestVolumeProfileSuite(t *testing.T) {
	suite.Run(t, new(VolumeProfileTestSuite))
}

func (suite *VolumeProfileTestSuite) sessionSeries() *types.PriceSeries {
	candles := []types.Candle{
		{Time: testBaseTime, Open: 100, High: 110, Low: 100, Close: 105, Volume: 500},
		{Time: testBaseTime + 60, Open: 105, High: 115, Low: 103, Close: 112, Volume: 800},
		{Time: testBaseTime + 120, Open: 112, High: 120, Low: 108, Close: 110, Volume: 300},
		{Time: testBaseTime + 180, Open: 110, High: 113, Low: 106, Close: 109, Volume: 400},
	}

	return types.NewPriceSeries("TEST.NS", types.Timeframe1Min, candles)
}

// TestVolumeConservation checks the per-bin volumes of the serialized profile
// sum to the session's total volume.
func (suite *VolumeProfileTestSuite) TestVolumeConservation() {
	series := suite.sessionSeries()
	spec := types.IndicatorSpec{ID: "vp", Kind: types.IndicatorTypeVP}

	suite.Require().NoError(suite.vp.Apply(series, spec))

	raw, present := series.At(0).Field("vp_profile")
	suite.Require().True(present)

	encoded, ok := raw.(string)
	suite.Require().True(ok)

	var profile []ProfileBin
	suite.Require().NoError(json.Unmarshal([]byte(encoded), &profile))
	suite.NotEmpty(profile)

	total := 0.0
	for _, bin := range profile {
		total += bin.Vol
	}

	suite.InDelta(2000.0, total, 1e-6)
}

// TestPOCAndValueAreaBounds checks the POC bin dominates every other bin and
// VAL <= POC price <= VAH.
func (suite *VolumeProfileTestSuite) TestPOCAndValueAreaBounds() {
	series := suite.sessionSeries()
	spec := types.IndicatorSpec{ID: "vp", Kind: types.IndicatorTypeVP}

	suite.Require().NoError(suite.vp.Apply(series, spec))

	poc, ok := fieldFloat(series.At(0), "vp_poc")
	suite.Require().True(ok)

	vah, ok := fieldFloat(series.At(0), "vp_vah")
	suite.Require().True(ok)

	val, ok := fieldFloat(series.At(0), "vp_val")
	suite.Require().True(ok)

	suite.LessOrEqual(val, poc)
	suite.LessOrEqual(poc, vah)

	raw, _ := series.At(0).Field("vp_profile")

	var profile []ProfileBin
	suite.Require().NoError(json.Unmarshal([]byte(raw.(string)), &profile))

	var pocBin *ProfileBin
	for i := range profile {
		if profile[i].LowBound <= poc && poc <= profile[i].HighBound {
			pocBin = &profile[i]
			break
		}
	}

	suite.Require().NotNil(pocBin, "POC price should fall inside a profile bin")

	for _, bin := range profile {
		suite.LessOrEqual(bin.Vol, pocBin.Vol+1e-9)
	}
}

// TestPercentValueArea checks value_area accepts 70 as meaning 0.70.
func (suite *VolumeProfileTestSuite) TestPercentValueArea() {
	fraction := suite.sessionSeries()
	percent := suite.sessionSeries()

	suite.Require().NoError(suite.vp.Apply(fraction, types.IndicatorSpec{
		ID:     "vp",
		Kind:   types.IndicatorTypeVP,
		Params: map[string]float64{"value_area": 0.70},
	}))
	suite.Require().NoError(suite.vp.Apply(percent, types.IndicatorSpec{
		ID:     "vp",
		Kind:   types.IndicatorTypeVP,
		Params: map[string]float64{"value_area": 70},
	}))

	fractionVAH, _ := fieldFloat(fraction.At(0), "vp_vah")
	percentVAH, _ := fieldFloat(percent.At(0), "vp_vah")
	suite.InDelta(fractionVAH, percentVAH, 1e-9)

	fractionVAL, _ := fieldFloat(fraction.At(0), "vp_val")
	percentVAL, _ := fieldFloat(percent.At(0), "vp_val")
	suite.InDelta(fractionVAL, percentVAL, 1e-9)
}

// TestZeroVolumeSessionStaysEmpty checks a session with no traded volume
// produces no profile fields.
func (suite *VolumeProfileTestSuite) TestZeroVolumeSessionStaysEmpty() {
	candles := []types.Candle{
		{Time: testBaseTime, Open: 10, High: 11, Low: 9, Close: 10, Volume: 0},
	}
	series := types.NewPriceSeries("TEST.NS", types.Timeframe1Min, candles)
	spec := types.IndicatorSpec{ID: "vp", Kind: types.IndicatorTypeVP}

	suite.Require().NoError(suite.vp.Apply(series, spec))

	_, present := series.At(0).Field("vp_poc")
	suite.False(present)
}

func (suite *VolumeProfileTestSuite) TestRejectsInvalidValueArea() {
	series := suite.sessionSeries()
	spec := types.IndicatorSpec{
		ID:     "vp",
		Kind:   types.IndicatorTypeVP,
		Params: map[string]float64{"value_area": -5},
	}

	suite.Error(suite.vp.Apply(series, spec))
}
