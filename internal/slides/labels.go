package slides

import (
	"regexp"
	"strconv"
	"strings"

	"church-hub/internal/models"
)

var (
	labelPattern = regexp.MustCompile(`^([A-Z])([0-9]+)$`)
	tagPattern   = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>`)
	htmlPattern  = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// AssignLabels fills in canonical verse/chorus labels (V1, V2, C1, ...) for
// slides that have none, returning a new slice in sort order. Author-assigned
// labels are never overwritten, and assigned numbers continue past the
// highest existing number of the same letter.
//
// Unlabeled slides whose normalized content repeats verbatim within the song
// are treated as choruses; repetition is the only structural signal present
// in raw slide data, and every occurrence of the same content receives the
// same chorus number (stable by first appearance). All other unlabeled
// slides become verses, numbered in sort order.
func AssignLabels(in []models.SongSlide) []models.SongSlide {
	out := sortedBySortOrder(in)

	contentCount := make(map[string]int)
	contentLabel := make(map[string]string)
	nextVerse, nextChorus := 1, 1

	for _, s := range out {
		key := normalizeContent(s.Content)
		contentCount[key]++
		label := s.LabelOrEmpty()
		if label == "" {
			continue
		}
		if m := labelPattern.FindStringSubmatch(label); m != nil {
			n, _ := strconv.Atoi(m[2])
			switch m[1] {
			case "V":
				if n >= nextVerse {
					nextVerse = n + 1
				}
			case "C":
				if n >= nextChorus {
					nextChorus = n + 1
				}
				if _, ok := contentLabel[key]; !ok {
					contentLabel[key] = label
				}
			}
		}
	}

	for i := range out {
		if out[i].Label != nil && *out[i].Label != "" {
			continue
		}
		key := normalizeContent(out[i].Content)
		var label string
		if contentCount[key] > 1 {
			if existing, ok := contentLabel[key]; ok {
				label = existing
			} else {
				label = "C" + strconv.Itoa(nextChorus)
				nextChorus++
				contentLabel[key] = label
			}
		} else {
			label = "V" + strconv.Itoa(nextVerse)
			nextVerse++
		}
		out[i].Label = &label
	}
	return out
}

// normalizeContent reduces an HTML slide fragment to comparable plain text:
// tags stripped, whitespace collapsed, case folded.
func normalizeContent(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	text = htmlPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}
