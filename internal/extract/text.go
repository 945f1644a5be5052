// Package extract pulls player identifiers and player detail fields out of
// sofifa markup.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
)

// Parse builds a goquery document from a fetched body.
func Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ownTexts returns the text nodes that are direct children of each selected
// element, in document order.
func ownTexts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				out = append(out, c.Text())
			}
		})
	})
	return out
}

// trimmed trims every entry and drops the blank ones.
func trimmed(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// firstText returns the first non-blank direct text of sel.
func firstText(sel *goquery.Selection) string {
	texts := trimmed(ownTexts(sel))
	if len(texts) == 0 {
		return ""
	}
	return texts[0]
}

// Pair is one label/value couple read from parallel markup lists.
type Pair struct {
	Label string
	Value string
}

// Zip pairs labels with values by position. Unequal lengths mean the markup
// drifted from the expected layout.
func Zip(region string, labels, values []string) ([]Pair, error) {
	if len(labels) != len(values) {
		return nil, crawler.Mismatch(region, "%d labels but %d values", len(labels), len(values))
	}
	pairs := make([]Pair, len(labels))
	for i := range labels {
		pairs[i] = Pair{Label: labels[i], Value: values[i]}
	}
	return pairs, nil
}

func pairsRecord(pairs []Pair) *crawler.Record {
	r := crawler.NewRecord()
	for _, p := range pairs {
		r.Set(p.Label, p.Value)
	}
	return r
}
