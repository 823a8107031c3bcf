package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/retiresim/portfolio-calculator/internal/domain"
)

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic
// formatting).
type Formatter interface {
	Format(result *domain.SimulationResult) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

// builtInFormatters stores available formatters.
var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	CSVFormatter{},
	JSONFormatter{},
}

// GetFormatterByName fetches a registered formatter, or nil when unknown.
func GetFormatterByName(name string) Formatter {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// NormalizeFormatName lowercases and trims a user-supplied format name.
func NormalizeFormatName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Extension maps a formatter name to its report file extension.
func Extension(name string) string {
	switch NormalizeFormatName(name) {
	case "csv":
		return "csv"
	case "json":
		return "json"
	default:
		return "txt"
	}
}

// WriteFormatted runs a formatter and writes its output to a timestamped
// report file, returning the filename.
func WriteFormatted(f Formatter, result *domain.SimulationResult, ext string) (string, error) {
	data, err := f.Format(result)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("portfolio_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}
