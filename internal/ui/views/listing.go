package views

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"bazaar/internal/domain"
)

// ListingRenderer handles rendering of listing rows and details
type ListingRenderer struct {
	styles *Styles
}

// NewListingRenderer creates a new listing renderer
func NewListingRenderer(styles *Styles) *ListingRenderer {
	return &ListingRenderer{
		styles: styles,
	}
}

// RenderRow renders one result line, highlighting the words of query in the title
func (r *ListingRenderer) RenderRow(l domain.Listing, isSelected bool, query string, width int) string {
	bg := lipgloss.NewStyle()
	if isSelected {
		bg = r.styles.SelectionBg
	}

	cursor := "  "
	if isSelected {
		cursor = "▸ "
	}

	price := r.styles.Price.Inherit(bg).Render(l.Price())
	category := lipgloss.NewStyle().
		Foreground(lipgloss.Color(CategoryColor(l.Category))).
		Inherit(bg).
		Render(l.Category)
	seller := r.styles.Seller.Inherit(bg).Render("@" + l.Seller)
	right := strings.Join([]string{price, category, seller}, bg.Render("  "))

	titleWidth := width - lipgloss.Width(cursor) - lipgloss.Width(right) - 2
	if titleWidth < 10 {
		titleWidth = 10
	}
	title := truncate(l.Title, titleWidth)
	nameStyle := bg.Bold(isSelected)
	renderedTitle := r.highlightMatch(title, query, r.styles.Highlight.Inherit(bg), nameStyle)

	pad := titleWidth - lipgloss.Width(title)
	if pad < 0 {
		pad = 0
	}
	return bg.Render(cursor) + renderedTitle + bg.Render(strings.Repeat(" ", pad+2)) + right
}

// RenderDetail renders the full listing for the pager
func (r *ListingRenderer) RenderDetail(l domain.Listing) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render(l.Title))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(fmt.Sprintf("%s %s\n", r.styles.DetailLabel.Render(fmt.Sprintf("%-9s", label)), value))
	}
	field("Price", r.styles.Price.Render(l.Price()))
	field("Category", lipgloss.NewStyle().Foreground(lipgloss.Color(CategoryColor(l.Category))).Render(l.Category))
	field("Seller", "@"+l.Seller)
	if !l.PostedAt.IsZero() {
		field("Posted", l.PostedAt.Format("2006-01-02 15:04"))
	}
	field("ID", r.styles.Dim.Render(l.ID))

	if l.Description != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(72).Render(l.Description))
		b.WriteString("\n")
	}
	return b.String()
}

// highlightMatch styles every word of text that starts with a word of query,
// mirroring the prefix matching of the catalog.
func (r *ListingRenderer) highlightMatch(text, query string, highlightStyle, normalStyle lipgloss.Style) string {
	terms := strings.FieldsFunc(strings.ToLower(query), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsNumber(c)
	})
	if len(terms) == 0 {
		return normalStyle.Render(text)
	}

	var out strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if !isWordRune(runes[i]) {
			j := i
			for j < len(runes) && !isWordRune(runes[j]) {
				j++
			}
			out.WriteString(normalStyle.Render(string(runes[i:j])))
			i = j
			continue
		}

		j := i
		for j < len(runes) && isWordRune(runes[j]) {
			j++
		}
		word := string(runes[i:j])
		n := matchedPrefix(strings.ToLower(word), terms)
		if n > 0 {
			wr := []rune(word)
			out.WriteString(highlightStyle.Render(string(wr[:n])))
			if n < len(wr) {
				out.WriteString(normalStyle.Render(string(wr[n:])))
			}
		} else {
			out.WriteString(normalStyle.Render(word))
		}
		i = j
	}
	return out.String()
}

// matchedPrefix returns the rune length of the longest term word starts with
func matchedPrefix(word string, terms []string) int {
	best := 0
	for _, t := range terms {
		if strings.HasPrefix(word, t) {
			if n := len([]rune(t)); n > best {
				best = n
			}
		}
	}
	return best
}

func isWordRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsNumber(c)
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
