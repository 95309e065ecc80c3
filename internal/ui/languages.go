package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// LanguageRow mirrors one languages.Profile.
type LanguageRow struct {
	ID         string
	Extensions []string
	SDKImports int
}

// RenderLanguages renders the language registry as a table.
func RenderLanguages(rows []LanguageRow) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		sdk := "-"
		if r.SDKImports > 0 {
			sdk = "yes"
		}
		data = append(data, []string{r.ID, strings.Join(r.Extensions, " "), sdk})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Headers("LANGUAGE", "EXTENSIONS", "SDK DETECTION").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return st.Foreground(ColorSecondary).Bold(true)
			case col == 0:
				return st.Foreground(ColorPrimary)
			case col == 1:
				return st.Foreground(ColorTextDim)
			}
			return st
		})
	return t.String()
}
