package facebook

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// ErrUnknownLayout is returned when a detail page matches none of the
// known listing layouts.
var ErrUnknownLayout = errors.New("unrecognized listing page layout")

var firstAmount = regexp.MustCompile(`^\D*\d[\d,.]*`)

// ParseSearch extracts the listing cards from a search result page.
// Cards carry the title, price, location, image and post URL; seller,
// condition and description need the detail page.
func ParseSearch(html string) ([]domain.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing search page: %w", err)
	}

	root := doc.Find(`[aria-label="Collection of Marketplace items"]`)
	if root.Length() == 0 {
		root = doc.Selection
	}

	var out []domain.RawListing
	seen := make(map[string]bool)
	root.Find(`a[href*="/marketplace/item/"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		canon := domain.CanonicalURL(href)
		if canon == "" || seen[canon] {
			return
		}

		fields := cardFields(a)
		if len(fields) < 2 {
			return
		}
		seen[canon] = true

		raw := domain.RawListing{
			Marketplace: domain.MarketplaceFacebook,
			PostURL:     href,
			Price:       cleanPrice(fields[0]),
			Title:       fields[1],
			Image:       a.Find("img").First().AttrOr("src", ""),
		}
		if len(fields) > 2 {
			raw.Location = fields[2]
		}
		out = append(out, raw)
	})
	return out, nil
}

// cardFields returns the texts of the card's detail block: price, title
// and, usually, location. The block is the element with the most direct
// div children carrying text.
func cardFields(card *goquery.Selection) []string {
	var best []string
	card.Find("div").AddBack().Each(func(_ int, s *goquery.Selection) {
		var texts []string
		s.ChildrenFiltered("div").Each(func(_ int, c *goquery.Selection) {
			if t := strings.TrimSpace(c.Text()); t != "" {
				texts = append(texts, t)
			}
		})
		if len(texts) > len(best) {
			best = texts
		}
	})
	return best
}

// cleanPrice drops the crossed-out original price that follows a
// discounted one without a space, as in "$80$120".
func cleanPrice(raw string) string {
	raw = strings.TrimSpace(raw)
	first := firstAmount.FindString(raw)
	if first == "" {
		return raw
	}
	rest := raw[len(first):]
	if rest != "" && !strings.HasPrefix(rest, " ") && strings.ContainsAny(rest, "0123456789") {
		return first
	}
	return raw
}

// detailPage reads one listing layout.
type detailPage struct {
	doc *goquery.Document
}

// ParseDetail extracts a listing from its detail page. Regular item pages
// are tried first, then rental pages, which lack a condition section.
func ParseDetail(html, postURL string) (domain.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.RawListing{}, fmt.Errorf("parsing listing page: %w", err)
	}
	p := detailPage{doc: doc}

	var description, condition string
	switch {
	case p.isRegular():
		description = p.regularDescription()
		condition = p.condition()
	case p.isRental():
		description = p.rentalDescription()
	default:
		return domain.RawListing{}, fmt.Errorf("%s: %w", postURL, ErrUnknownLayout)
	}

	raw := domain.RawListing{
		Marketplace: domain.MarketplaceFacebook,
		PostURL:     postURL,
		Title:       p.title(),
		Price:       cleanPrice(p.price()),
		Image:       doc.Find("img").First().AttrOr("src", ""),
		Seller:      text(doc.Find(`a[href*="/marketplace/profile"]`).Last()),
		Location:    p.location(),
		Condition:   condition,
		Description: description,
	}
	if raw.Title == "" || raw.Price == "" || raw.Description == "" {
		return domain.RawListing{}, fmt.Errorf("%s: missing title, price or description: %w", postURL, ErrUnknownLayout)
	}
	return raw, nil
}

func (p detailPage) isRegular() bool {
	return p.doc.Find("li").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Condition")
	}).Length() > 0
}

func (p detailPage) isRental() bool {
	return p.doc.Find("h2").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Description")
	}).Length() > 0
}

func (p detailPage) title() string {
	return text(p.doc.Find("h1").Last())
}

func (p detailPage) price() string {
	return text(p.doc.Find("h1").Last().Next())
}

func (p detailPage) condition() string {
	label := spanWithText(p.doc, "Condition", true)
	row := parentWith(label, func(children *goquery.Selection) bool {
		return children.Length() >= 2 && strings.Contains(children.Eq(0).Text(), "Condition")
	})
	return text(row.Eq(1))
}

// regularDescription is the block that follows the list holding the
// condition row.
func (p detailPage) regularDescription() string {
	label := spanWithText(p.doc, "Condition", true)
	return text(label.Closest("ul").Next())
}

func (p detailPage) rentalDescription() string {
	header := p.doc.Find("h2").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return spanWithTextIn(s, "Description").Length() > 0
	}).First()
	row := parentWith(header, func(children *goquery.Selection) bool {
		return children.Length() > 1 && strings.TrimSpace(children.Eq(0).Text()) == "Description"
	})
	return text(row.Eq(1))
}

// location is the sibling of the "Location is approximate" note.
func (p detailPage) location() string {
	note := spanWithText(p.doc, "Location is approximate", false)
	row := parentWith(note, func(children *goquery.Selection) bool {
		return children.Length() == 2 && strings.Contains(children.Eq(1).Text(), "Location is approximate")
	})
	return text(row.Eq(0))
}

func spanWithText(doc *goquery.Document, want string, exact bool) *goquery.Selection {
	return doc.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if exact {
			return t == want
		}
		return strings.Contains(t, want)
	}).First()
}

func spanWithTextIn(s *goquery.Selection, want string) *goquery.Selection {
	return s.Find("span").FilterFunction(func(_ int, c *goquery.Selection) bool {
		return strings.TrimSpace(c.Text()) == want
	})
}

// parentWith walks up from s until an element's children satisfy cond and
// returns those children. It returns an empty selection when no ancestor
// matches.
func parentWith(s *goquery.Selection, cond func(children *goquery.Selection) bool) *goquery.Selection {
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		if children := cur.Children(); cond(children) {
			return children
		}
	}
	return &goquery.Selection{}
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
