package mockapi

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures is the canned data served by the responder
type Fixtures struct {
	Reviews     []domain.Review         `yaml:"reviews"`
	Dashboard   domain.DashboardStats   `yaml:"dashboard"`
	ChannelPerf []domain.ChannelPerf    `yaml:"channelPerf"`
	Stores      []domain.StoreRecord    `yaml:"stores"`
	Heatmap     domain.Heatmap          `yaml:"heatmap"`
	Schedules   []domain.ReportSchedule `yaml:"schedules"`
	Settings    domain.AppSettings      `yaml:"settings"`
}

// LoadFixtures parses the embedded fixture document
func LoadFixtures() (*Fixtures, error) {
	return parseFixtures(fixturesYAML)
}

func parseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	if len(f.Reviews) == 0 {
		return nil, fmt.Errorf("fixtures contain no reviews")
	}
	return &f, nil
}
