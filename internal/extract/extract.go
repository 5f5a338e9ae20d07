// Package extract links query blocks to their answers and applies the
// confidence threshold, producing the flat field mapping written to CSV.
package extract

import (
	"resume-pipeline/internal/analysis"
	"resume-pipeline/internal/metrics"
	"resume-pipeline/internal/telemetry"
)

// ConfidenceThreshold is the exclusive minimum score an answer must
// exceed to be accepted. A score of exactly 90 is rejected.
const ConfidenceThreshold = 90.0

// Fields resolves the declared aliases against a job's full block set.
//
// Answer edges may reference blocks that appear later in the sequence
// than the query that owns them, so the answer lookup maps are completed
// in a first pass before any edge is followed.
//
// The returned map always carries every declared alias; fields with no
// accepted answer stay at the empty string. When a query links to more
// than one satisfying answer, the last one wins.
func Fields(blocks []analysis.Block, aliases []string, threshold float64) map[string]string {
	answerText := make(map[string]string)
	answerConf := make(map[string]float64)
	for _, b := range blocks {
		if b.Kind == analysis.KindQueryResult {
			answerText[b.ID] = b.Text
			answerConf[b.ID] = b.Confidence
		}
	}

	data := make(map[string]string, len(aliases))
	for _, alias := range aliases {
		data[alias] = ""
	}

	for _, b := range blocks {
		if b.Kind != analysis.KindQuery {
			continue
		}
		if _, declared := data[b.Alias]; !declared {
			// Tolerate blocks for queries this pipeline never asked.
			continue
		}
		for _, id := range b.AnswerIDs {
			text, ok := answerText[id]
			if !ok {
				continue
			}
			conf := answerConf[id]
			if conf > threshold {
				data[b.Alias] = text
				continue
			}
			// Below threshold is not an error, just a suppressed answer.
			metrics.IncFieldsSuppressed()
			telemetry.Warn("extract.low_confidence", map[string]any{
				"alias":      b.Alias,
				"confidence": conf,
				"text":       text,
			})
		}
	}
	return data
}
