// Package config loads and validates scenario files for the simulator.
package config

import (
	"fmt"
	"os"

	"github.com/retiresim/portfolio-calculator/internal/domain"
	pkgdecimal "github.com/retiresim/portfolio-calculator/pkg/decimal"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ScenarioFile is the on-disk YAML schema. Monetary amounts and rates are
// plain floats here and converted to decimals at the domain boundary.
type ScenarioFile struct {
	Parameters ParametersConfig `yaml:"parameters"`
	Tax        *TaxConfig       `yaml:"tax,omitempty"`
	Simulation SimulationConfig `yaml:"simulation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ParametersConfig mirrors domain.SimulationParameters.
type ParametersConfig struct {
	StartingBalance       float64 `yaml:"starting_balance"`
	MeanReturn            float64 `yaml:"mean_return"`
	Volatility            float64 `yaml:"volatility"`
	InflationRate         float64 `yaml:"inflation_rate"`
	StartAge              int     `yaml:"start_age"`
	SSStartAge            int     `yaml:"ss_start_age"`
	EndAge                int     `yaml:"end_age"`
	TargetMonthlyTakehome float64 `yaml:"target_monthly_takehome"`
	MonthlySSBenefit      float64 `yaml:"monthly_ss_benefit"`
	TrialCount            int     `yaml:"trial_count"`
}

// BracketConfig is one federal bracket given by its upper bound. The last
// bracket may omit up_to (or set it to 0) for an unbounded top bracket.
type BracketConfig struct {
	UpTo float64 `yaml:"up_to"`
	Rate float64 `yaml:"rate"`
}

// TaxConfig overrides the default tax rules when present.
type TaxConfig struct {
	Year                     int             `yaml:"year"`
	FilingStatus             string          `yaml:"filing_status"`
	Brackets                 []BracketConfig `yaml:"brackets"`
	StateRate                float64         `yaml:"state_rate"`
	StateTaxesSocialSecurity bool            `yaml:"state_taxes_social_security"`
	SSLowerThreshold         float64         `yaml:"ss_lower_threshold"`
	SSUpperThreshold         float64         `yaml:"ss_upper_threshold"`
}

// SimulationConfig holds engine knobs that are not model parameters.
type SimulationConfig struct {
	Seed       int64 `yaml:"seed"`
	MaxWorkers int   `yaml:"max_workers"`
}

// LoggingConfig selects log verbosity and encoder.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// InputParser handles parsing of scenario configuration files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a scenario from a YAML file and validates it.
func (ip *InputParser) LoadFromFile(filename string) (*ScenarioFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var scenario ScenarioFile
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.Validate(&scenario); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}
	return &scenario, nil
}

// Validate converts the scenario to domain types and runs their contract
// checks, so the file is rejected before any simulation work begins.
func (ip *InputParser) Validate(scenario *ScenarioFile) error {
	params := scenario.Parameters.ToDomain().ApplyDefaults()
	if err := params.Validate(); err != nil {
		return err
	}
	rules, err := scenario.TaxRules()
	if err != nil {
		return err
	}
	if err := rules.Validate(); err != nil {
		return err
	}
	if scenario.Simulation.MaxWorkers < 0 {
		return fmt.Errorf("%w: max workers cannot be negative (got %d)",
			domain.ErrInvalidParameter, scenario.Simulation.MaxWorkers)
	}
	return nil
}

// ToDomain converts the float-based parameter block to decimals.
func (pc ParametersConfig) ToDomain() domain.SimulationParameters {
	return domain.SimulationParameters{
		StartingBalance:       pkgdecimal.NewMoney(pc.StartingBalance).Decimal,
		MeanReturn:            decimal.NewFromFloat(pc.MeanReturn),
		Volatility:            decimal.NewFromFloat(pc.Volatility),
		InflationRate:         decimal.NewFromFloat(pc.InflationRate),
		StartAge:              pc.StartAge,
		SSStartAge:            pc.SSStartAge,
		EndAge:                pc.EndAge,
		TargetMonthlyTakehome: pkgdecimal.NewMoney(pc.TargetMonthlyTakehome).Decimal,
		MonthlySSBenefit:      pkgdecimal.NewMoney(pc.MonthlySSBenefit).Decimal,
		TrialCount:            pc.TrialCount,
	}
}

// TaxRules builds the domain rule set: the defaults when no tax block is
// present, otherwise the configured override.
func (sf *ScenarioFile) TaxRules() (domain.TaxRules, error) {
	if sf.Tax == nil {
		return domain.DefaultTaxRules(), nil
	}
	tc := sf.Tax

	rules := domain.DefaultTaxRules()
	if tc.Year != 0 {
		rules.Year = tc.Year
	}
	if tc.FilingStatus != "" {
		rules.FilingStatus = tc.FilingStatus
	}
	if tc.StateRate != 0 {
		rules.StateRate = decimal.NewFromFloat(tc.StateRate)
	}
	rules.StateTaxesSocialSecurity = tc.StateTaxesSocialSecurity
	if tc.SSLowerThreshold != 0 {
		rules.SSLowerThreshold = pkgdecimal.NewMoney(tc.SSLowerThreshold).Decimal
	}
	if tc.SSUpperThreshold != 0 {
		rules.SSUpperThreshold = pkgdecimal.NewMoney(tc.SSUpperThreshold).Decimal
	}

	if len(tc.Brackets) > 0 {
		brackets, err := bracketsFromConfig(tc.Brackets)
		if err != nil {
			return domain.TaxRules{}, err
		}
		rules.Brackets = brackets
	}
	return rules, nil
}

// bracketsFromConfig turns the up_to list into contiguous Min/Max brackets.
func bracketsFromConfig(configs []BracketConfig) ([]domain.TaxBracket, error) {
	brackets := make([]domain.TaxBracket, 0, len(configs))
	lower := decimal.Zero
	for i, bc := range configs {
		upper := pkgdecimal.NewMoney(bc.UpTo).Decimal
		if bc.UpTo == 0 {
			if i != len(configs)-1 {
				return nil, fmt.Errorf("%w: only the last federal bracket may omit up_to (bracket %d)",
					domain.ErrInvalidParameter, i)
			}
			upper = decimal.NewFromInt(999999999)
		}
		brackets = append(brackets, domain.TaxBracket{
			Min:  lower,
			Max:  upper,
			Rate: decimal.NewFromFloat(bc.Rate),
		})
		lower = upper
	}
	return brackets, nil
}

// CreateExampleConfiguration returns a ready-to-run scenario matching the
// documented reference case.
func (ip *InputParser) CreateExampleConfiguration() *ScenarioFile {
	return &ScenarioFile{
		Parameters: ParametersConfig{
			StartingBalance:       1000000,
			MeanReturn:            0.07,
			Volatility:            0.12,
			InflationRate:         0.03,
			StartAge:              56,
			SSStartAge:            62,
			EndAge:                85,
			TargetMonthlyTakehome: 4533,
			MonthlySSBenefit:      2500,
			TrialCount:            1000,
		},
		Simulation: SimulationConfig{
			Seed:       42,
			MaxWorkers: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// WriteExampleConfiguration marshals the example scenario to a YAML file.
func (ip *InputParser) WriteExampleConfiguration(filename string) error {
	data, err := yaml.Marshal(ip.CreateExampleConfiguration())
	if err != nil {
		return fmt.Errorf("failed to marshal example configuration: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
