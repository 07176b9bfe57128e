package usage

// ChannelUsage is the per-channel total returned by the today and total endpoints.
type ChannelUsage struct {
	ChannelID    int64   `json:"channel_id"`
	ChannelName  string  `json:"channel_name"`
	DurationHour float64 `json:"duration_hour"`
}

// RankedUsage is a ranking entry. The upstream returns them best first.
type RankedUsage struct {
	Rank         int     `json:"rank"`
	ChannelID    int64   `json:"channel_id"`
	ChannelName  string  `json:"channel_name"`
	DurationHour float64 `json:"duration_hour"`
}

// DailyUsage is the total across channels for one day.
type DailyUsage struct {
	Date         string  `json:"date"`
	DurationHour float64 `json:"duration_hour"`
}

// MonthlyReport summarises one calendar month.
type MonthlyReport struct {
	TotalHour  float64      `json:"total_hour"`
	DailyUsage []DailyUsage `json:"daily_usage"`
}

// TodaySummary pairs today's per-channel usage with its mean.
type TodaySummary struct {
	Channels []ChannelUsage `json:"channels"`
	Average  float64        `json:"average"`
}

// Summarize computes the mean duration per channel; zero channels yields 0.
func Summarize(items []ChannelUsage) TodaySummary {
	if items == nil {
		items = []ChannelUsage{}
	}
	var sum float64
	for _, it := range items {
		sum += it.DurationHour
	}
	avg := 0.0
	if len(items) > 0 {
		avg = sum / float64(len(items))
	}
	return TodaySummary{Channels: items, Average: avg}
}

// RankTotals ranks total-usage entries 1..n in the order received.
func RankTotals(items []ChannelUsage) []RankedUsage {
	out := make([]RankedUsage, len(items))
	for i, it := range items {
		out[i] = RankedUsage{
			Rank:         i + 1,
			ChannelID:    it.ChannelID,
			ChannelName:  it.ChannelName,
			DurationHour: it.DurationHour,
		}
	}
	return out
}
