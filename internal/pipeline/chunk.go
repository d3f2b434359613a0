package pipeline

import "lifestream/internal/types"

// DefaultEntryOverhead approximates the "[timestamp] " prefix and newline
// added to each entry when it is formatted into a prompt.
const DefaultEntryOverhead = 64

// EstimateChars approximates the prompt size of entries.
func EstimateChars(entries []types.LogEntry, overhead int) int {
	n := 0
	for _, e := range entries {
		n += len(e.Content) + overhead
	}
	return n
}

// Chunk splits entries into ordered runs whose estimate stays within maxChars.
// An entry larger than maxChars on its own forms a single-entry chunk; entries
// are never split, dropped or duplicated.
func Chunk(entries []types.LogEntry, maxChars, overhead int) [][]types.LogEntry {
	var chunks [][]types.LogEntry
	var cur []types.LogEntry
	size := 0
	for _, e := range entries {
		c := len(e.Content) + overhead
		if len(cur) > 0 && size+c > maxChars {
			chunks = append(chunks, cur)
			cur = nil
			size = 0
		}
		cur = append(cur, e)
		size += c
	}
	if len(cur) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}
