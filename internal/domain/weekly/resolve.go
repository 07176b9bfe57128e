package weekly

// FallbackColor is used for channels with no configured color.
const FallbackColor = "#cccccc"

// ColorLookup resolves a channel id to a display color.
type ColorLookup interface {
	Lookup(channelID string) (string, bool)
}

// ColorMap maps a channel name to its display color.
type ColorMap map[string]string

// ResolveColors returns a color for every observed channel and how many fell
// back. A nil lookup resolves everything to fallback.
func ResolveColors(ids map[string]string, lookup ColorLookup, fallback string) (ColorMap, int) {
	colors := make(ColorMap, len(ids))
	misses := 0
	for name, id := range ids {
		if lookup != nil {
			if c, ok := lookup.Lookup(id); ok {
				colors[name] = c
				continue
			}
		}
		colors[name] = fallback
		misses++
	}
	return colors, misses
}

// Average spreads total hours over the whole window, not over days with data.
func Average(total float64) float64 {
	return total / WindowDays
}

// ChannelKeys lists the distinct channels across rows in first-observed order.
func ChannelKeys(rows []Row) []string {
	keys := []string{}
	seen := make(map[string]struct{})
	for _, r := range rows {
		for _, c := range r.Cells {
			if _, ok := seen[c.Channel]; ok {
				continue
			}
			seen[c.Channel] = struct{}{}
			keys = append(keys, c.Channel)
		}
	}
	return keys
}
