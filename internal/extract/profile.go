package extract

import (
	"regexp"
	"strings"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
)

// profilePattern matches "{age}y.o. ({birthdate}) {height}cm / {ft-in} / {weight}kg / {lbs}lbs".
// The slash between the imperial height and the weight is optional.
var profilePattern = regexp.MustCompile(
	`^\s*(\d+)\s*y\.o\.\s*\((.+?)\)\s*(\d+)\s*cm\s*/\s*(.+?)\s*(?:/\s*)?(\d+)\s*kg\s*/\s*(.+?)\s*lbs\s*$`,
)

// Profile is the metric part of the free-text profile summary.
type Profile struct {
	Age       string
	BirthDate string
	Height    string
	Weight    string
}

// ParseProfileText reads age, birth date, height and weight from the profile
// summary. The imperial duplicates are discarded.
func ParseProfileText(text string) (Profile, error) {
	m := profilePattern.FindStringSubmatch(text)
	if m == nil {
		return Profile{}, crawler.Mismatch("profile summary", "unrecognized text %q", strings.TrimSpace(text))
	}
	return Profile{
		Age:       m[1],
		BirthDate: strings.TrimSpace(m[2]),
		Height:    m[3],
		Weight:    m[5],
	}, nil
}
