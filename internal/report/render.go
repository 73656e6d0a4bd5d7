package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

const (
	labelWidth = 24
	barWidth   = 24
	absentMark = "–"
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	barStyle     = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("10"))
	statStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// FormatValue prints a row value the way the table wants it.
func FormatValue(t *Table, r Row) string {
	if r.Absent {
		return absentMark
	}
	if t.Decimal {
		return strconv.FormatFloat(r.Value, 'f', 1, 64)
	}
	return strconv.FormatFloat(math.Round(r.Value), 'f', 0, 64)
}

func truncateLabel(s string, w int) string {
	return runewidth.Truncate(s, w, "…")
}

func bar(v, top float64, width int) string {
	if top <= 0 || v <= 0 {
		return ""
	}
	n := int(math.Round(v / top * float64(width)))
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// RenderTable draws one table with a proportional bar per row.
func RenderTable(t *Table) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Title))
	b.WriteString("\n")
	if t.Caption != "" {
		b.WriteString(captionStyle.Render(t.Caption))
		b.WriteString("\n")
	}
	if len(t.Rows) == 0 {
		b.WriteString(captionStyle.Render("(no data)"))
		b.WriteString("\n")
		return b.String()
	}

	top := 0.0
	for _, r := range t.Rows {
		if !r.Absent && r.Value > top {
			top = r.Value
		}
	}

	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{
			truncateLabel(r.Label, labelWidth),
			FormatValue(t, r),
			bar(r.Value, top, barWidth),
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(captionStyle).
		Headers("", t.Unit, "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return cellStyle.Align(lipgloss.Right)
			case col == 2:
				return barStyle
			default:
				return cellStyle
			}
		})
	b.WriteString(tbl.String())
	b.WriteString("\n")
	return b.String()
}

// RenderSection draws the summary line and every table of a section.
func RenderSection(s *Section) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(strings.ToUpper(s.Title)))
	b.WriteString("\n")
	if len(s.Summary) > 0 {
		parts := make([]string, len(s.Summary))
		for i, st := range s.Summary {
			parts[i] = fmt.Sprintf("%s: %s", st.Label, st.Value)
		}
		b.WriteString(statStyle.Render(strings.Join(parts, "  ·  ")))
		b.WriteString("\n")
	}
	for i := range s.Tables {
		b.WriteString("\n")
		b.WriteString(RenderTable(&s.Tables[i]))
	}
	return b.String()
}

// RenderTerminal writes every section for an interactive terminal.
func RenderTerminal(w io.Writer, rep *Report) error {
	for i := range rep.Sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, RenderSection(&rep.Sections[i])); err != nil {
			return err
		}
	}
	return nil
}

// RenderTSV writes one line per row: section, key, label, value.
// Absent values are written as an empty field.
func RenderTSV(w io.Writer, rep *Report) error {
	for _, s := range rep.Sections {
		for i := range s.Tables {
			t := &s.Tables[i]
			for _, r := range t.Rows {
				val := ""
				if !r.Absent {
					val = FormatValue(t, r)
				}
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					strings.ToLower(s.Title), t.Key, tsvField(r.Label), val); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
}
