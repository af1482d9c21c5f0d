package importer

import (
	"sort"

	"flat-backend/internal/config"
)

// StrategiesFromConfig builds the full-replace strategies for every
// configured table, in directory order, followed by the variables strategy.
func StrategiesFromConfig(cfg config.FlatConfig) []Strategy {
	dirs := make([]string, 0, len(cfg.Tables))
	for dir := range cfg.Tables {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var strategies []Strategy
	for _, dir := range dirs {
		strategies = append(strategies, NewFullReplace(dir, cfg.Tables[dir]))
	}
	if v := cfg.Variables; v.Dir != "" {
		strategies = append(strategies, NewVariables(v.Dir, v.Table, v.Event, v.Prefix))
	}
	return strategies
}
