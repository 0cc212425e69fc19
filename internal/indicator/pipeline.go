package indicator

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"go.uber.org/zap"
)

// Pipeline enriches a price series with the indicators a request asked for.
// A bad indicator spec never fails the batch: the offending indicator's
// fields are nulled on every candle and the remaining specs still run.
type Pipeline struct {
	registry IndicatorRegistry
	validate *validator.Validate
	log      *logger.Logger
}

// NewPipeline creates a pipeline over the given registry.
func NewPipeline(registry IndicatorRegistry, log *logger.Logger) *Pipeline {
	return &Pipeline{
		registry: registry,
		validate: validator.New(),
		log:      log,
	}
}

// Enrich applies every spec to the series in order. Specs with an unknown
// kind are skipped entirely; specs whose params fault leave their fields
// explicitly null. Duplicate spec ids keep the first occurrence.
func (p *Pipeline) Enrich(series *types.PriceSeries, specs []types.IndicatorSpec) {
	seen := make(map[string]struct{}, len(specs))

	for _, spec := range specs {
		if err := p.validate.Struct(spec); err != nil {
			p.log.Warn("Skipping malformed indicator spec",
				zap.String("id", spec.ID),
				zap.String("kind", string(spec.Kind)),
				zap.Error(err),
			)

			continue
		}

		if _, dup := seen[spec.ID]; dup {
			p.log.Warn("Skipping duplicate indicator id",
				zap.String("id", spec.ID),
			)

			continue
		}

		seen[spec.ID] = struct{}{}

		ind, err := p.registry.GetIndicator(spec.Kind)
		if err != nil {
			p.log.Warn("Skipping unrecognized indicator kind",
				zap.String("id", spec.ID),
				zap.String("kind", string(spec.Kind)),
			)

			continue
		}

		keys := ind.Fields(spec)
		nullFields(series, keys)

		if err := p.apply(ind, series, spec); err != nil {
			p.log.Warn("Indicator computation failed, fields nulled",
				zap.String("id", spec.ID),
				zap.String("kind", string(spec.Kind)),
				zap.Error(err),
			)

			// wipe any partial output
			nullFields(series, keys)
		}
	}
}

// apply runs one indicator, converting a panic from degenerate params into an
// error so one faulting spec cannot take the batch down.
func (p *Pipeline) apply(ind Indicator, series *types.PriceSeries, spec types.IndicatorSpec) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeIndicatorCalculation, "indicator %s panicked: %v", spec.ID, r)
		}
	}()

	return ind.Apply(series, spec)
}

// nullFields marks every key as explicitly null on every candle.
func nullFields(series *types.PriceSeries, keys []string) {
	for i := 0; i < series.Len(); i++ {
		candle := series.At(i)
		for _, key := range keys {
			candle.SetField(key, nil)
		}
	}
}
