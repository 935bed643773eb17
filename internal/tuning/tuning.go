package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	// Pricing.
	SalesCutRate     float64 `yaml:"sales_cut_rate"`
	DeliveryCostMul  float64 `yaml:"delivery_cost_mul"`
	DurationWeeksMul float64 `yaml:"duration_weeks_mul"`

	// Listing policy.
	MaxListingsPerSeller int     `yaml:"max_listings_per_seller"`
	ListingWeekHours     float64 `yaml:"listing_week_hours"`

	// Operational.
	SweepEverySeconds int `yaml:"sweep_every_seconds"`
	SaveEverySeconds  int `yaml:"save_every_seconds"`
	ClientQueueMax    int `yaml:"client_queue_max"`
}

func Defaults() Tuning {
	return Tuning{
		SalesCutRate:         0.10,
		DeliveryCostMul:      1.0,
		DurationWeeksMul:     1.0,
		MaxListingsPerSeller: 30,
		ListingWeekHours:     7 * 24,
		SweepEverySeconds:    10,
		SaveEverySeconds:     300,
		ClientQueueMax:       64,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
