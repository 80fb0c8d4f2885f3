package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

const systemPrompt = `You help a user decide whether a marketplace listing is worth their attention. You are concise and answer in the requested format.`

const evaluateTmpl = `A user would like to buy a {{.Name}} from {{.Marketplace}} marketplace.
They searched for {{.SearchPhrases}}.
{{- if .Description}}
They describe what they want as "{{.Description}}".
{{- end}}
{{- if .Keywords}}
Relevant listings should match the keywords {{.Keywords}}.
{{- end}}
{{- if .Price}}
{{.Price}}
{{- end}}
{{- if .Exclude}}
They are not interested in listings matching {{.Exclude}}.
{{- end}}

They found this listing:
Title: {{.Listing.Title}}
Price: {{.Listing.Price}}
Location: {{.Listing.Location}}
{{- if .Listing.Condition}}
Condition: {{.Listing.Condition}}
{{- end}}
{{- if .Listing.Seller}}
Seller: {{.Listing.Seller}}
{{- end}}
URL: {{.Listing.PostURL}}
Description: {{.Listing.Description}}

Rate how well the listing matches what the user wants on a scale of 1 to 5:
1 - No match: unrelated, a scam, or clearly not what they want.
2 - Potential match: missing information to decide.
3 - Poor match: related but with problems such as price or condition.
4 - Good match: matches well at a fair price.
5 - Great deal: matches well at an excellent price.
Answer with one line in the form "Rating <1-5>: <summary in at most 30 words>".`

var promptTmpl = template.Must(template.New("evaluate").Parse(evaluateTmpl))

type promptData struct {
	Name          string
	Marketplace   string
	SearchPhrases string
	Description   string
	Keywords      string
	Price         string
	Exclude       string
	Listing       *domain.Listing
}

// RenderPrompt builds the evaluation prompt for l found by item.
func RenderPrompt(item *domain.Item, l *domain.Listing) (string, error) {
	data := promptData{
		Name:          item.Name,
		Marketplace:   item.Marketplace,
		SearchPhrases: quoteJoin(item.SearchPhrases),
		Description:   item.Description,
		Keywords:      item.Keywords.String(),
		Price:         priceSentence(item.MinPrice, item.MaxPrice),
		Listing:       l,
	}
	var exclude []string
	for _, s := range []string{item.ExcludeKeywords.String(), item.ExcludeByDescription.String()} {
		if s != "" {
			exclude = append(exclude, s)
		}
	}
	data.Exclude = strings.Join(exclude, " or ")

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " and ")
}

func priceSentence(minPrice, maxPrice float64) string {
	switch {
	case minPrice > 0 && maxPrice > 0:
		return fmt.Sprintf("Their price range is %g to %g.", minPrice, maxPrice)
	case maxPrice > 0:
		return fmt.Sprintf("Their maximum price is %g.", maxPrice)
	case minPrice > 0:
		return fmt.Sprintf("Their minimum price is %g.", minPrice)
	default:
		return ""
	}
}
