package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retiresim/portfolio-calculator/internal/domain"
)

const sampleScenario = `
parameters:
  starting_balance: 1000000
  mean_return: 0.07
  volatility: 0.12
  inflation_rate: 0.03
  start_age: 56
  ss_start_age: 62
  end_age: 85
  target_monthly_takehome: 4533
  monthly_ss_benefit: 2500
  trial_count: 500
simulation:
  seed: 42
  max_workers: 8
logging:
  level: debug
  format: json
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	parser := NewInputParser()
	scenario, err := parser.LoadFromFile(writeScenario(t, sampleScenario))
	require.NoError(t, err)

	assert.Equal(t, int64(42), scenario.Simulation.Seed)
	assert.Equal(t, 8, scenario.Simulation.MaxWorkers)
	assert.Equal(t, "debug", scenario.Logging.Level)
	assert.Equal(t, "json", scenario.Logging.Format)

	params := scenario.Parameters.ToDomain()
	assert.True(t, params.StartingBalance.Equal(decimal.NewFromInt(1000000)))
	assert.True(t, params.MeanReturn.Equal(decimal.NewFromFloat(0.07)))
	assert.Equal(t, 56, params.StartAge)
	assert.Equal(t, 62, params.SSStartAge)
	assert.Equal(t, 85, params.EndAge)
	assert.Equal(t, 500, params.TrialCount)
	assert.True(t, params.TargetMonthlyTakehome.Equal(decimal.NewFromInt(4533)))
}

func TestLoadFromFileMissing(t *testing.T) {
	parser := NewInputParser()
	_, err := parser.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadFromFileMalformedYAML(t *testing.T) {
	parser := NewInputParser()
	_, err := parser.LoadFromFile(writeScenario(t, "parameters: [not a map"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadFromFileInvalidParameters(t *testing.T) {
	bad := `
parameters:
  starting_balance: 1000000
  mean_return: 0.07
  volatility: 0.12
  inflation_rate: 0.03
  start_age: 85
  ss_start_age: 62
  end_age: 56
  target_monthly_takehome: 4533
`
	parser := NewInputParser()
	_, err := parser.LoadFromFile(writeScenario(t, bad))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
}

func TestValidateRejectsNegativeWorkers(t *testing.T) {
	parser := NewInputParser()
	scenario := parser.CreateExampleConfiguration()
	scenario.Simulation.MaxWorkers = -1
	err := parser.Validate(scenario)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
}

func TestTaxRulesDefaultsWhenAbsent(t *testing.T) {
	scenario := &ScenarioFile{}
	rules, err := scenario.TaxRules()
	require.NoError(t, err)
	assert.Equal(t, 2024, rules.Year)
	assert.Len(t, rules.Brackets, 7)
}

func TestTaxRulesOverrides(t *testing.T) {
	scenario := &ScenarioFile{
		Tax: &TaxConfig{
			Year:                     2025,
			StateRate:                0.05,
			StateTaxesSocialSecurity: true,
			Brackets: []BracketConfig{
				{UpTo: 10000, Rate: 0.10},
				{UpTo: 50000, Rate: 0.20},
				{Rate: 0.30}, // unbounded top bracket
			},
		},
	}

	rules, err := scenario.TaxRules()
	require.NoError(t, err)
	require.NoError(t, rules.Validate())

	assert.Equal(t, 2025, rules.Year)
	assert.True(t, rules.StateRate.Equal(decimal.NewFromFloat(0.05)))
	assert.True(t, rules.StateTaxesSocialSecurity)

	require.Len(t, rules.Brackets, 3)
	assert.True(t, rules.Brackets[0].Min.IsZero())
	assert.True(t, rules.Brackets[1].Min.Equal(decimal.NewFromInt(10000)))
	assert.True(t, rules.Brackets[1].Max.Equal(decimal.NewFromInt(50000)))
	assert.True(t, rules.Brackets[2].Max.GreaterThan(decimal.NewFromInt(100000000)))
}

func TestTaxRulesRejectsUnboundedMiddleBracket(t *testing.T) {
	scenario := &ScenarioFile{
		Tax: &TaxConfig{
			Brackets: []BracketConfig{
				{Rate: 0.10}, // up_to omitted but not last
				{UpTo: 50000, Rate: 0.20},
			},
		},
	}
	_, err := scenario.TaxRules()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
}

func TestExampleConfigurationRoundTrip(t *testing.T) {
	parser := NewInputParser()

	example := parser.CreateExampleConfiguration()
	require.NoError(t, parser.Validate(example))

	path := filepath.Join(t.TempDir(), "example.yaml")
	require.NoError(t, parser.WriteExampleConfiguration(path))

	loaded, err := parser.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, example.Parameters, loaded.Parameters)
	assert.Equal(t, example.Simulation, loaded.Simulation)
	assert.Equal(t, example.Logging, loaded.Logging)
}
