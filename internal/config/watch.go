package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"github.com/phrazzld/hanzi-cloze/internal/scoring"
)

// WatchScoring watches the config file the configuration was loaded from and
// calls apply with the new scoring section whenever the file changes. Changes
// to other sections are ignored until restart. A reloaded file that fails
// validation is logged and dropped.
//
// It returns false when the configuration did not come from a file.
func (c *Config) WatchScoring(logger *slog.Logger, apply func(scoring.Config) error) bool {
	if c.source == nil || c.source.ConfigFileUsed() == "" {
		return false
	}
	v := c.source
	log := logger.With("component", "config_watcher", "file", v.ConfigFileUsed())

	v.OnConfigChange(func(e fsnotify.Event) {
		next, err := decode(v)
		if err != nil {
			log.Error("ignoring invalid configuration change", "error", err, "op", e.Op.String())
			return
		}
		if err := apply(next.Scoring.ToScoring()); err != nil {
			log.Error("failed to apply scoring configuration", "error", err)
			return
		}
		log.Info("scoring configuration reloaded",
			"valid_threshold", next.Scoring.ValidThreshold,
			"target_similarity", next.Scoring.TargetSimilarity)
	})
	v.WatchConfig()
	return true
}
