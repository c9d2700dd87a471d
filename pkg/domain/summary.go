package domain

type Summary struct {
	Files        int           `json:"files"`
	Failed       int           `json:"failed"`
	OriginalKB   float64       `json:"original_kb"`
	CompressedKB float64       `json:"compressed_kb"`
	SavedPercent float64       `json:"saved_percent"`
	Items        []ItemSummary `json:"items"`
}

type ItemSummary struct {
	Name             string  `json:"name"`
	OriginalKB       float64 `json:"original_kb"`
	FinalKB          float64 `json:"final_kb"`
	Quality          int     `json:"quality"`
	TargetMet        bool    `json:"target_met"`
	ReductionPercent float64 `json:"reduction_percent"`
}

func Summarize(outcome BatchOutcome) Summary {
	summary := Summary{
		Files:  len(outcome.Results),
		Failed: outcome.Failed,
		Items:  make([]ItemSummary, 0, len(outcome.Results)),
	}

	for _, res := range outcome.Results {
		summary.OriginalKB += res.OriginalSizeKB
		summary.CompressedKB += res.FinalSizeKB
		summary.Items = append(summary.Items, ItemSummary{
			Name:             res.Name,
			OriginalKB:       res.OriginalSizeKB,
			FinalKB:          res.FinalSizeKB,
			Quality:          res.Quality,
			TargetMet:        res.TargetMet,
			ReductionPercent: res.ReductionPercent(),
		})
	}

	if summary.OriginalKB > 0 {
		summary.SavedPercent = (summary.OriginalKB - summary.CompressedKB) / summary.OriginalKB * 100
	}
	return summary
}
