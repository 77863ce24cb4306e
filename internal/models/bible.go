package models

import "fmt"

// Verse is one bible verse in one translation.
type Verse struct {
	ID                      string `json:"id"`
	TranslationID           string `json:"translationId"`
	TranslationAbbreviation string `json:"translationAbbreviation"`
	BookID                  string `json:"bookId"`
	BookCode                string `json:"bookCode"`
	BookName                string `json:"bookName"`
	Chapter                 int    `json:"chapter"`
	VerseNumber             int    `json:"verseNumber"`
	Text                    string `json:"text"`
}

// Reference renders the human-readable reference, e.g. "John 3:16".
func (v *Verse) Reference() string {
	return fmt.Sprintf("%s %d:%d", v.BookName, v.Chapter, v.VerseNumber)
}
