package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/psidex/chargraph/internal/sentiment"
)

var (
	brand  = color.New(color.FgHiMagenta, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

// badge colours a sentiment badge by its label category.
func badge(score *float64) string {
	text := sentiment.Badge(score)
	switch sentiment.Label.Classify(score) {
	case sentiment.Positive:
		return good.Sprint(text)
	case sentiment.Negative:
		return bad.Sprint(text)
	default:
		return subtle.Sprint(text)
	}
}

// table prints an aligned table. Cells may carry colour codes, so widths are
// measured on the plain text passed in plain.
func table(w io.Writer, headers []string, rows [][]string, plain [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range plain {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	var header, sep strings.Builder
	for i, h := range headers {
		fmt.Fprintf(&header, "  %-*s", widths[i], h)
		sep.WriteString("  " + strings.Repeat("─", widths[i]))
	}
	subtle.Fprintln(w, header.String())
	subtle.Fprintln(w, sep.String())

	for r, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			pad := widths[i] - utf8.RuneCountInString(plain[r][i])
			line.WriteString("  " + cell + strings.Repeat(" ", pad))
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}
