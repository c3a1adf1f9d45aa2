package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"riskcli/internal/errors"
)

// Holding is one weighted position in a portfolio definition.
type Holding struct {
	Ticker string  `yaml:"ticker" validate:"required"`
	Weight float64 `yaml:"weight" validate:"gt=0"`
}

// PortfolioSpec is a portfolio definition loaded from YAML: the data
// source, the analysis window, and the weighted holdings.
type PortfolioSpec struct {
	Name     string    `yaml:"name"`
	Source   string    `yaml:"source" validate:"oneof=csv synthetic"`
	CSVDir   string    `yaml:"csv_dir"`
	From     string    `yaml:"from" validate:"required,datetime=2006-01-02"`
	To       string    `yaml:"to" validate:"required,datetime=2006-01-02"`
	Holdings []Holding `yaml:"holdings" validate:"min=1,dive"`
}

// LoadPortfolioSpec reads and validates a portfolio definition file.
func LoadPortfolioSpec(path string) (*PortfolioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("read portfolio file %s", path), err)
	}

	var spec PortfolioSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("parse portfolio file %s", path), err)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks structural constraints plus the cross-field rules the
// struct tags cannot express.
func (s *PortfolioSpec) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return errors.NewConfigError("invalid portfolio definition", err)
	}

	if s.Source == "csv" && s.CSVDir == "" {
		return errors.NewConfigError("csv source requires csv_dir", nil)
	}

	from, to, err := s.Window()
	if err != nil {
		return err
	}
	if !from.Before(to) {
		return errors.NewConfigError(
			fmt.Sprintf("from date %s must precede to date %s", s.From, s.To), nil)
	}

	seen := make(map[string]bool, len(s.Holdings))
	for _, h := range s.Holdings {
		if seen[h.Ticker] {
			return errors.NewConfigError(fmt.Sprintf("duplicate holding %s", h.Ticker), nil)
		}
		seen[h.Ticker] = true
	}
	return nil
}

// Window returns the parsed analysis date range.
func (s *PortfolioSpec) Window() (from, to time.Time, err error) {
	from, err = time.Parse("2006-01-02", s.From)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewConfigError(fmt.Sprintf("parse from date %s", s.From), err)
	}
	to, err = time.Parse("2006-01-02", s.To)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewConfigError(fmt.Sprintf("parse to date %s", s.To), err)
	}
	return from, to, nil
}

// Tickers returns the holding tickers in definition order.
func (s *PortfolioSpec) Tickers() []string {
	out := make([]string, 0, len(s.Holdings))
	for _, h := range s.Holdings {
		out = append(out, h.Ticker)
	}
	return out
}

// Weights returns the holdings as a ticker-to-weight map.
func (s *PortfolioSpec) Weights() map[string]float64 {
	out := make(map[string]float64, len(s.Holdings))
	for _, h := range s.Holdings {
		out[h.Ticker] = h.Weight
	}
	return out
}
