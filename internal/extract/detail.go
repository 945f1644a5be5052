package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
)

const (
	gridSelector    = "article div.grid"
	profileSelector = "div.profile.clearfix"

	// SpecialitiesKey holds the speciality list in a detail record.
	SpecialitiesKey = "Player specialities"
	// TeamsKey holds the club and national team mapping in a detail record.
	TeamsKey = "teams"
)

// Grid block positions on the detail page. Index 2 carries nothing we keep.
const (
	gridOverall      = 0
	gridInfo         = 1
	gridDetailFirst  = 3
	gridDetailEnd    = 5
	infoColumnsCount = 4
)

// PlayerDetail extracts the full detail record for the player identified by id.
func PlayerDetail(doc *goquery.Document, id string) (*crawler.Record, error) {
	grids := doc.Find(gridSelector)
	if grids.Length() <= gridInfo {
		return nil, crawler.Mismatch("grid blocks", "found %d, need at least %d", grids.Length(), gridInfo+1)
	}

	identity, err := Identity(doc, id)
	if err != nil {
		return nil, err
	}
	overall, err := OverallAttributes(grids.Eq(gridOverall))
	if err != nil {
		return nil, err
	}

	cols := grids.Eq(gridInfo).Find("div.col")
	if cols.Length() < infoColumnsCount {
		return nil, crawler.Mismatch("info columns", "found %d, need %d", cols.Length(), infoColumnsCount)
	}
	profile, err := ProfileFields(cols.Eq(0))
	if err != nil {
		return nil, err
	}
	specialities := Specialities(cols.Eq(1))
	teams := Teams(cols.Eq(2), cols.Eq(3))

	end := min(grids.Length(), gridDetailEnd)
	var detailed *crawler.Record
	if end > gridDetailFirst {
		detailed, err = DetailedAttributes(grids.Slice(gridDetailFirst, end))
		if err != nil {
			return nil, err
		}
	}

	return Merge(identity, overall, profile, teams, specialities, detailed), nil
}

// Identity reads id, name, positions, age, birth date, height and weight from the
// profile header.
func Identity(doc *goquery.Document, id string) (*crawler.Record, error) {
	header := doc.Find(profileSelector)
	if header.Length() == 0 {
		return nil, crawler.Mismatch("profile", "no %q block", profileSelector)
	}
	name := firstText(header.Find("h1"))
	if name == "" {
		return nil, crawler.Mismatch("profile", "player name missing")
	}

	summaries := trimmed(ownTexts(header.Find("p")))
	if len(summaries) == 0 {
		return nil, crawler.Mismatch("profile summary", "no text")
	}
	profile, err := ParseProfileText(summaries[len(summaries)-1])
	if err != nil {
		return nil, err
	}

	r := crawler.NewRecord()
	r.Set("id", id)
	r.Set("name", name)
	r.Set("positions", trimmed(ownTexts(header.Find("p span"))))
	r.Set("age", profile.Age)
	r.Set("birth_date", profile.BirthDate)
	r.Set("height", profile.Height)
	r.Set("weight", profile.Weight)
	return r, nil
}

// OverallAttributes maps each overall category label to its score.
func OverallAttributes(grid *goquery.Selection) (*crawler.Record, error) {
	labels := trimmed(ownTexts(grid.Find("div.col div.sub")))
	values := trimmed(ownTexts(grid.Find("div.col em")))
	pairs, err := Zip("overall attributes", labels, values)
	if err != nil {
		return nil, err
	}
	return pairsRecord(pairs), nil
}

// ProfileFields maps the labeled entries of the profile column.
func ProfileFields(col *goquery.Selection) (*crawler.Record, error) {
	labels := trimmed(ownTexts(col.Find("p label")))
	values := trimmed(ownTexts(col.Find("p")))
	pairs, err := Zip("profile fields", labels, values)
	if err != nil {
		return nil, err
	}
	return pairsRecord(pairs), nil
}

// Specialities lists the player's specialities under SpecialitiesKey.
func Specialities(col *goquery.Selection) *crawler.Record {
	r := crawler.NewRecord()
	r.Set(SpecialitiesKey, trimmed(ownTexts(col.Find("p a"))))
	return r
}

// Teams maps club and national team names to the value shown beside them.
// A column without a team name is left out.
func Teams(club, national *goquery.Selection) *crawler.Record {
	teams := crawler.NewRecord()
	for _, col := range []*goquery.Selection{club, national} {
		name := firstText(col.Find("p a"))
		if name == "" {
			continue
		}
		teams.Set(name, firstText(col.Find("p")))
	}
	r := crawler.NewRecord()
	r.Set(TeamsKey, teams)
	return r
}

// DetailedAttributes maps each category heading to its attribute scores. The last
// category, when it carries no scores, is kept as a plain list of names.
func DetailedAttributes(grids *goquery.Selection) (*crawler.Record, error) {
	r := crawler.NewRecord()
	cols := grids.Find("div.col")
	last := cols.Length() - 1
	var err error
	cols.EachWithBreak(func(i int, col *goquery.Selection) bool {
		heading := firstText(col.Find("h5"))
		labels := attributeLabels(col)
		values := trimmed(ownTexts(col.Find("em")))
		if i == last && len(values) == 0 {
			if len(labels) > 0 {
				r.Set(heading, labels)
			}
			return true
		}
		var pairs []Pair
		pairs, err = Zip("attributes "+heading, labels, values)
		if err != nil {
			return false
		}
		r.Set(heading, pairsRecord(pairs))
		return true
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// attributeLabels drops boost annotations such as "+2" or "-1".
func attributeLabels(col *goquery.Selection) []string {
	labels := []string{}
	for _, t := range trimmed(ownTexts(col.Find("p span"))) {
		if strings.ContainsAny(t, "+-") {
			continue
		}
		labels = append(labels, t)
	}
	return labels
}

// Merge unions parts into a new record in order; later parts win on collision.
func Merge(parts ...*crawler.Record) *crawler.Record {
	out := crawler.NewRecord()
	for _, p := range parts {
		out.Merge(p)
	}
	return out
}
