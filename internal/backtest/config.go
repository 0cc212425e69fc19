package backtest

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// DefaultInitialCapital is the starting cash when a run does not specify one.
const DefaultInitialCapital = 10000.0

// Config configures a single backtest run.
type Config struct {
	InitialCapital float64                    `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting capital for the backtest in USD,minimum=0" validate:"gte=0"`
	StartTime      optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time restricting the simulated window"`
	EndTime        optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time restricting the simulated window"`
}

// EmptyConfig returns the default run configuration.
func EmptyConfig() Config {
	return Config{
		InitialCapital: DefaultInitialCapital,
		StartTime:      nil,
		EndTime:        nil,
	}
}

// UnmarshalYAML implements custom unmarshaling for Config
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		InitialCapital *float64   `yaml:"initial_capital"`
		StartTime      *time.Time `yaml:"start_time"`
		EndTime        *time.Time `yaml:"end_time"`
	}

	var config plainConfig
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.InitialCapital = DefaultInitialCapital
	if config.InitialCapital != nil {
		c.InitialCapital = *config.InitialCapital
	}

	if config.InitialCapital != nil && *config.InitialCapital < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "initial_capital must not be negative, got %v", *config.InitialCapital)
	}

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the run configuration.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	return reflector.Reflect(c), nil
}

// GenerateSchemaJSON renders the configuration schema as indented JSON.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	encoded, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}
