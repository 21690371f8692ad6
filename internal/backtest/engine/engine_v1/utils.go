package engine

import (
	"fmt"
	"path/filepath"
)

// getResultFolder builds the artifact directory for one sweep:
// <resultsFolder>/<symbol>[/<start>_<end>]. The time range folder only
// appears when the sweep was bounded.
func getResultFolder(resultsFolder string, symbol string) string {
	return filepath.Join(resultsFolder, symbol)
}

// getBoundedResultFolder appends the time range segment when either bound
// is set.
func (b *BacktestEngineV1) getBoundedResultFolder() string {
	folder := getResultFolder(b.resultsFolder, b.config.Symbol)

	if b.config.StartTime.IsNone() && b.config.EndTime.IsNone() {
		return folder
	}

	startStr := "all"
	endStr := "all"

	if b.config.StartTime.IsSome() {
		startStr = b.config.StartTime.Unwrap().Format("20060102")
	}

	if b.config.EndTime.IsSome() {
		endStr = b.config.EndTime.Unwrap().Format("20060102")
	}

	return filepath.Join(folder, fmt.Sprintf("%s_%s", startStr, endStr))
}
