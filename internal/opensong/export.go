package opensong

import (
	"encoding/xml"
	"fmt"
	"strings"

	"church-hub/internal/models"
	"church-hub/internal/slides"
)

type songXML struct {
	XMLName      xml.Name `xml:"song"`
	Title        string   `xml:"title"`
	Author       string   `xml:"author,omitempty"`
	CCLI         string   `xml:"ccli,omitempty"`
	Presentation string   `xml:"presentation"`
	Lyrics       string   `xml:"lyrics"`
}

// Export renders a song as OpenSong XML.
//
// <presentation> holds the space-joined label sequence of the chorus-expanded
// display order. <lyrics> holds the labelled plain text in the original sort
// order: expansion is a presentation-time concern and is never persisted into
// the canonical song record.
func Export(song *models.Song, songSlides []models.SongSlide) ([]byte, error) {
	labeled := slides.AssignLabels(songSlides)

	var lyrics strings.Builder
	for _, s := range labeled {
		fmt.Fprintf(&lyrics, "[%s]\n", s.LabelOrEmpty())
		for _, line := range strings.Split(slides.PlainText(s.Content), "\n") {
			fmt.Fprintf(&lyrics, " %s\n", line)
		}
		lyrics.WriteString("\n")
	}

	doc := songXML{
		Title:        song.Title,
		Author:       song.Author,
		CCLI:         song.CCLI,
		Presentation: slides.PresentationOrderString(labeled),
		Lyrics:       strings.TrimRight(lyrics.String(), "\n") + "\n",
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal song XML: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
