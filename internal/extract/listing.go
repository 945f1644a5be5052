package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

var playerPath = regexp.MustCompile(`/player/(\w*)/`)

// PlayerIdentifiers returns the identifier segment of every player link found in
// listing table cells, in document order. Duplicates are kept.
func PlayerIdentifiers(doc *goquery.Document) []string {
	ids := []string{}
	doc.Find("td a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		for _, m := range playerPath.FindAllStringSubmatch(href, -1) {
			ids = append(ids, m[1])
		}
	})
	return ids
}
