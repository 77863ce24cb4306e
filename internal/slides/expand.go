package slides

import (
	"sort"
	"strings"

	"church-hub/internal/models"
)

// ExpandPresentationOrder derives the display sequence for a song by
// interleaving the current chorus after each verse, preserving the original
// slide order ("replace-on-next-chorus" semantics):
//
//   - Slides are walked in sort order and emitted as encountered.
//   - A chorus slide becomes the current chorus from that point on, so a
//     later C2 replaces C1 for subsequent verses.
//   - After a verse, the current chorus is spliced in unless the next
//     original slide already is a chorus (no back-to-back duplicates).
//
// Songs with no chorus slides, or no verse slides, expand to themselves:
// absent structure means the author's order is already final. Unknown label
// prefixes (bridges etc.) pass through and never trigger a splice.
//
// An earlier revision of this algorithm grouped all verses together and
// rotated a single chorus choice at the midpoint. The two disagree on songs
// whose distinct choruses are interspersed non-contiguously with verses;
// which order worship teams actually want there is still an open product
// question. This order-preserving variant is the canonical one.
func ExpandPresentationOrder(in []models.SongSlide) []models.ExpandedSlide {
	sorted := sortedBySortOrder(in)

	out := make([]models.ExpandedSlide, 0, len(sorted)*2)
	emit := func(s models.SongSlide, originalIndex int) {
		out = append(out, models.ExpandedSlide{
			SongSlide:     s,
			OriginalIndex: originalIndex,
			DisplayIndex:  len(out),
		})
	}

	if !hasChorus(sorted) || !hasVerse(sorted) {
		for i, s := range sorted {
			emit(s, i)
		}
		return out
	}

	currentChorus := -1
	for i, s := range sorted {
		emit(s, i)
		switch {
		case isChorus(s.LabelOrEmpty()):
			currentChorus = i
		case isVerse(s.LabelOrEmpty()) && currentChorus >= 0:
			// Splice the chorus after this verse unless the next original
			// slide already is one.
			if i+1 >= len(sorted) || !isChorus(sorted[i+1].LabelOrEmpty()) {
				emit(sorted[currentChorus], currentChorus)
			}
		}
	}
	return out
}

// PresentationOrderString renders the expanded order as the space-joined
// label sequence used for the OpenSong <presentation> field. Songs without
// labels produce an empty string.
func PresentationOrderString(in []models.SongSlide) string {
	expanded := ExpandPresentationOrder(in)
	labels := make([]string, 0, len(expanded))
	for _, s := range expanded {
		if l := s.LabelOrEmpty(); l != "" {
			labels = append(labels, l)
		}
	}
	return strings.Join(labels, " ")
}

func sortedBySortOrder(in []models.SongSlide) []models.SongSlide {
	out := make([]models.SongSlide, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

func isChorus(label string) bool {
	return strings.HasPrefix(label, "C")
}

func isVerse(label string) bool {
	return strings.HasPrefix(label, "V")
}

func hasChorus(in []models.SongSlide) bool {
	for _, s := range in {
		if isChorus(s.LabelOrEmpty()) {
			return true
		}
	}
	return false
}

func hasVerse(in []models.SongSlide) bool {
	for _, s := range in {
		if isVerse(s.LabelOrEmpty()) {
			return true
		}
	}
	return false
}
