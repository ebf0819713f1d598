package handlers

import (
	"almanac/internal/candidates"
	"almanac/internal/config"
	"almanac/internal/logger"
	"almanac/internal/pipeline"
	"almanac/internal/relevance"
	"almanac/internal/wiki"
	"almanac/internal/wikidata"

	"github.com/spf13/viper"
)

// newRunner wires the pipeline to its collaborators from the loaded
// configuration. The candidate provider is optional: without an API
// key the pipeline runs in single-source mode.
func newRunner(cfg *config.Config) *pipeline.Runner {
	feed := wiki.NewClient(cfg.Wiki.BaseURL, cfg.Wiki.UserAgent, cfg.Wiki.Timeout)
	facts := wikidata.NewClient(cfg.Wikidata.BaseURL, cfg.Wikidata.Timeout)

	var provider candidates.Provider
	if cfg.Candidates.Enabled {
		p, err := candidates.NewGeminiProvider(
			cfg.Candidates.APIKey,
			cfg.Candidates.Model,
			cfg.Candidates.MaxItems,
			cfg.Candidates.Timeout,
		)
		if err != nil {
			logger.Warn("Candidate provider unavailable, running on encyclopedic data alone", "reason", err.Error())
		} else {
			provider = p
		}
	}

	regionCode := viper.GetString("region.country_code")

	return pipeline.NewRunner(
		cfg.Curation,
		feed,
		facts,
		provider,
		relevance.NewClassifier(),
		regionCode,
	)
}
