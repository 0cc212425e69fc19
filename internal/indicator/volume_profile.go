package indicator

import (
	"encoding/json"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// profileBinCount is the fixed number of equal-width price bins per session.
const profileBinCount = 50

// defaultValueAreaFraction is the share of session volume the value area
// captures when the request params do not override it.
const defaultValueAreaFraction = 0.70

// VolumeProfile implements a per-calendar-day session volume profile: volume
// distributed over price bins, with Point of Control and Value Area bounds
// broadcast to every bar of the session.
type VolumeProfile struct{}

// NewVolumeProfile creates a new VolumeProfile indicator.
func NewVolumeProfile() Indicator {
	return &VolumeProfile{}
}

// Name returns the name of the indicator.
func (v *VolumeProfile) Name() types.IndicatorType {
	return types.IndicatorTypeVP
}

// Fields implements the Indicator interface.
func (v *VolumeProfile) Fields(spec types.IndicatorSpec) []string {
	return []string{
		spec.ID + "_poc",
		spec.ID + "_vah",
		spec.ID + "_val",
		spec.ID + "_profile",
	}
}

// ProfileBin is one nonzero price bin of a session profile, serialized into
// the `_profile` field.
type ProfileBin struct {
	Price     float64 `json:"price"`
	Vol       float64 `json:"vol"`
	LowBound  float64 `json:"low_bound"`
	HighBound float64 `json:"high_bound"`
	InVA      bool    `json:"in_va"`
}

// Apply implements the Indicator interface. The value_area parameter accepts
// either a fraction (0.70) or a percentage (70).
func (v *VolumeProfile) Apply(series *types.PriceSeries, spec types.IndicatorSpec) error {
	valueArea := spec.FloatParam("value_area", defaultValueAreaFraction)
	if valueArea > 1 {
		valueArea /= 100
	}

	if valueArea <= 0 || valueArea > 1 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "VP value_area must be within (0, 1], got %v", spec.FloatParam("value_area", defaultValueAreaFraction))
	}

	for _, sess := range daySessions(series) {
		v.applySession(series, spec.ID, sess, valueArea)
	}

	return nil
}

func (v *VolumeProfile) applySession(series *types.PriceSeries, id string, sess session, valueArea float64) {
	sessionLow := series.At(sess.start).Low
	sessionHigh := series.At(sess.start).High
	totalVolume := 0.0

	for i := sess.start; i < sess.end; i++ {
		candle := series.At(i)
		if candle.Low < sessionLow {
			sessionLow = candle.Low
		}

		if candle.High > sessionHigh {
			sessionHigh = candle.High
		}

		totalVolume += candle.Volume
	}

	// a session without volume has no profile; fields stay null
	if totalVolume <= 0 {
		return
	}

	binWidth := (sessionHigh - sessionLow) / profileBinCount
	volumes := make([]float64, profileBinCount)

	if binWidth <= 0 {
		// the whole session traded at one price
		volumes[0] = totalVolume
	} else {
		for i := sess.start; i < sess.end; i++ {
			v.distribute(series.At(i), volumes, sessionLow, binWidth)
		}
	}

	poc := 0
	for b := 1; b < profileBinCount; b++ {
		if volumes[b] > volumes[poc] {
			poc = b
		}
	}

	lo, hi := v.expandValueArea(volumes, poc, valueArea*totalVolume)

	binLow := func(b int) float64 { return sessionLow + float64(b)*binWidth }
	binCenter := func(b int) float64 { return binLow(b) + binWidth/2 }

	profile := make([]ProfileBin, 0, profileBinCount)

	for b := 0; b < profileBinCount; b++ {
		if volumes[b] <= 0 {
			continue
		}

		profile = append(profile, ProfileBin{
			Price:     binCenter(b),
			Vol:       volumes[b],
			LowBound:  binLow(b),
			HighBound: binLow(b + 1),
			InVA:      b >= lo && b <= hi,
		})
	}

	encoded, err := json.Marshal(profile)
	if err != nil {
		// ProfileBin has no unmarshalable fields; keep the session null
		return
	}

	pocPrice := binCenter(poc)
	vah := binLow(hi + 1)
	val := binLow(lo)

	for i := sess.start; i < sess.end; i++ {
		candle := series.At(i)
		setFloat(candle, id+"_poc", pocPrice)
		setFloat(candle, id+"_vah", vah)
		setFloat(candle, id+"_val", val)
		candle.SetField(id+"_profile", string(encoded))
	}
}

// distribute spreads one bar's volume across every bin its low..high range
// overlaps, proportional to the overlap width. A bar with high == low drops
// all of its volume into the single containing bin.
func (v *VolumeProfile) distribute(candle *types.Candle, volumes []float64, sessionLow, binWidth float64) {
	if candle.Volume <= 0 {
		return
	}

	if candle.High == candle.Low {
		bin := int((candle.High - sessionLow) / binWidth)
		if bin < 0 {
			bin = 0
		}

		if bin >= profileBinCount {
			bin = profileBinCount - 1
		}

		volumes[bin] += candle.Volume

		return
	}

	density := candle.Volume / (candle.High - candle.Low)

	for b := 0; b < profileBinCount; b++ {
		binLow := sessionLow + float64(b)*binWidth
		binHigh := binLow + binWidth

		overlapLow := candle.Low
		if binLow > overlapLow {
			overlapLow = binLow
		}

		overlapHigh := candle.High
		if binHigh < overlapHigh {
			overlapHigh = binHigh
		}

		if overlapHigh > overlapLow {
			volumes[b] += (overlapHigh - overlapLow) * density
		}
	}
}

// expandValueArea grows a window around the POC bin, always absorbing the
// adjacent bin holding more volume, until the window covers targetVolume. An
// exact tie between the two candidate neighbors extends the lower side.
func (v *VolumeProfile) expandValueArea(volumes []float64, poc int, targetVolume float64) (int, int) {
	lo, hi := poc, poc
	accumulated := volumes[poc]

	for accumulated < targetVolume && (lo > 0 || hi < len(volumes)-1) {
		lowerVolume := -1.0
		if lo > 0 {
			lowerVolume = volumes[lo-1]
		}

		upperVolume := -1.0
		if hi < len(volumes)-1 {
			upperVolume = volumes[hi+1]
		}

		if lowerVolume >= upperVolume {
			lo--
			accumulated += lowerVolume
		} else {
			hi++
			accumulated += upperVolume
		}
	}

	return lo, hi
}
