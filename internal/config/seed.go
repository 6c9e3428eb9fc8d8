package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Seed is the configuration data an administrator loads before the first
// signup: sizes, levels, currencies, billing agents and base bands.
type Seed struct {
	Sizes []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Multiplier  string `yaml:"multiplier"`
	} `yaml:"sizes"`
	Levels []struct {
		Name    string `yaml:"name"`
		Order   int    `yaml:"order"`
		Default bool   `yaml:"default"`
	} `yaml:"levels"`
	Currencies []struct {
		Code   string `yaml:"code"`
		Symbol string `yaml:"symbol"`
		Region string `yaml:"region"`
	} `yaml:"currencies"`
	BillingAgents []struct {
		Name        string `yaml:"name"`
		Country     string `yaml:"country"`
		Default     bool   `yaml:"default"`
		RedirectURL string `yaml:"redirect_url"`
	} `yaml:"billing_agents"`
	BaseBands []struct {
		Level    string `yaml:"level"`
		Size     string `yaml:"size"`
		Country  string `yaml:"country"`
		Currency string `yaml:"currency"`
		Fee      int    `yaml:"fee"`
	} `yaml:"base_bands"`
}

// LoadSeed reads a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed parses and validates seed YAML.
func ParseSeed(data []byte) (*Seed, error) {
	seed := &Seed{}
	if err := yaml.Unmarshal(data, seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return seed, nil
}

// SizeMultiplier returns the parsed multiplier of the i-th size.
func (s *Seed) SizeMultiplier(i int) decimal.Decimal {
	m, _ := decimal.NewFromString(s.Sizes[i].Multiplier)
	return m
}

func (s *Seed) validate() error {
	for _, size := range s.Sizes {
		m, err := decimal.NewFromString(size.Multiplier)
		if err != nil {
			return fmt.Errorf("size %q: invalid multiplier %q", size.Name, size.Multiplier)
		}
		if m.IsNegative() {
			return fmt.Errorf("size %q: multiplier must not be negative", size.Name)
		}
	}

	defaults := 0
	for _, level := range s.Levels {
		if level.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return fmt.Errorf("seed marks %d levels as default, at most one allowed", defaults)
	}

	defaults = 0
	for _, agent := range s.BillingAgents {
		if agent.Default {
			defaults++
			if agent.Country != "" {
				return fmt.Errorf("default billing agent %q cannot have a country", agent.Name)
			}
		}
	}
	if defaults != 1 {
		return fmt.Errorf("seed must mark exactly one billing agent as default, got %d", defaults)
	}
	return nil
}
