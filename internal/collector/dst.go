package collector

import (
	"log"
	"sort"

	"PipSentinel/internal/model"
)

// AdjustClock applies the first matching shift to every bar dated inside a
// shift's range, then restores chronological order. Where a shifted bar lands
// on an existing timestamp the earlier bar in the new order is kept.
func AdjustClock(bars []model.Bar, shifts []model.ClockShift) []model.Bar {
	if len(shifts) == 0 {
		return bars
	}
	out := make([]model.Bar, len(bars))
	for i, b := range bars {
		for _, s := range shifts {
			if s.Dates.Contains(b.Time) {
				b.Time = b.Time.Add(s.Offset)
				break
			}
		}
		out[i] = b
	}
	return sortBars(out)
}

// sortBars orders bars by time and drops any bar whose timestamp repeats an
// earlier one.
func sortBars(bars []model.Bar) []model.Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	dropped := 0
	for i, b := range bars {
		if i > 0 && b.Time.Equal(out[len(out)-1].Time) {
			dropped++
			continue
		}
		out = append(out, b)
	}
	if dropped > 0 {
		log.Printf("[WARN] dropped %d bars with duplicate timestamps", dropped)
	}
	return out
}
