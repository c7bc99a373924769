// Package pdfprocessor implements the document chapter-extraction engine.
//
// normalizer.go implements the chapter normalizer molecule: dedup by
// chapter number and ascending sort.
package pdfprocessor

import "sort"

// Normalize sorts chapters ascending by number and removes duplicates.
// When two chapters share a number, only the first occurrence in
// sorted-then-original order survives; the segmenter can re-open a
// chapter number on a false-positive heading in body text, and the
// duplicate guard discards those. All other fields pass through
// unchanged. The input slice is not mutated.
//
// Example:
//
//	chapters := Normalize(segmented) // numbers strictly ascending, unique
func Normalize(chapters []Chapter) []Chapter {
	if len(chapters) == 0 {
		return []Chapter{}
	}

	sorted := make([]Chapter, len(chapters))
	copy(sorted, chapters)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})

	result := make([]Chapter, 0, len(sorted))
	seen := make(map[int]bool, len(sorted))
	for _, c := range sorted {
		if seen[c.Number] {
			continue
		}
		seen[c.Number] = true
		result = append(result, c)
	}
	return result
}
