package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker syntax is load-bearing: saved structures round-trip through the
// database and back into the dashboard, so both patterns must match the
// authored text exactly.
var (
	// tagBlankRe matches the literal <input> tag, case-insensitively.
	tagBlankRe = regexp.MustCompile(`(?i)<input>`)
	// underscoreRunRe matches a run of three or more underscores.
	underscoreRunRe = regexp.MustCompile(`_{3,}`)
)

const (
	noteSnippetLimit    = 100
	summaryContextLimit = 50
)

// CountBlanks counts blank markers over the document's reading-order
// traversal. It never mutates the document and is total on partially
// hydrated trees (missing sections or items simply contribute nothing).
func CountBlanks(doc Document) int {
	if doc == nil {
		return 0
	}
	n := 0
	doc.walkBlanks(func(blankSeed) { n++ })
	return n
}

func countTagBlanks(s string) int {
	return len(tagBlankRe.FindAllStringIndex(s, -1))
}

func (d *FormDocument) walkBlanks(visit func(seed blankSeed)) {
	for _, sec := range d.Sections {
		for _, field := range sec.Fields {
			n := countTagBlanks(field.Value)
			if n == 0 {
				continue
			}
			text := field.Label
			if strings.TrimSpace(sec.Title) != "" {
				text = sec.Title + ": " + field.Label
			}
			for i := 0; i < n; i++ {
				visit(blankSeed{questionText: text})
			}
		}
	}
}

func (d *NoteDocument) walkBlanks(visit func(seed blankSeed)) {
	for _, sec := range d.Sections {
		for _, item := range sec.Items {
			if item.Nested() {
				for _, sub := range item.Subitems {
					d.visitNoteLeaf(sec.Title, item.Prefix+" - "+sub, sub, visit)
				}
				continue
			}
			d.visitNoteLeaf(sec.Title, item.Text, item.Text, visit)
		}
	}
}

// visitNoteLeaf emits one seed per marker in raw, using display (which may
// carry the nested-item prefix) as the snippet source.
func (d *NoteDocument) visitNoteLeaf(sectionTitle, display, raw string, visit func(seed blankSeed)) {
	n := countTagBlanks(raw)
	if n == 0 {
		return
	}
	snippet := truncateRunes(tagBlankRe.ReplaceAllString(display, "___"), noteSnippetLimit)
	text := snippet
	if st := strings.TrimSpace(sectionTitle); st != "" {
		text = st + ": " + snippet
	}
	for i := 0; i < n; i++ {
		visit(blankSeed{questionText: text})
	}
}

func (d *TableDocument) walkBlanks(visit func(seed blankSeed)) {
	for ri, row := range d.Rows {
		for ci, cell := range row {
			n := countTagBlanks(cell)
			if n == 0 {
				continue
			}
			rowLabel := fmt.Sprintf("Row %d", ri+1)
			if strings.TrimSpace(row[0]) != "" {
				rowLabel = row[0]
			}
			header := fmt.Sprintf("Column %d", ci+1)
			if ci < len(d.Headers) && strings.TrimSpace(d.Headers[ci]) != "" {
				header = d.Headers[ci]
			}
			text := fmt.Sprintf("%s: %s - %s", d.Title, rowLabel, header)
			for i := 0; i < n; i++ {
				visit(blankSeed{questionText: text})
			}
		}
	}
}

func (d *SummaryDocument) walkBlanks(visit func(seed blankSeed)) {
	blanks := underscoreRunRe.FindAllStringIndex(d.Text, -1)
	if len(blanks) == 0 {
		return
	}
	// Splitting on the run pattern yields len(blanks)+1 fragments; the
	// i-th blank sits between fragments i and i+1.
	fragments := underscoreRunRe.Split(d.Text, -1)
	for i := range blanks {
		before := strings.TrimSpace(lastRunes(fragments[i], summaryContextLimit))
		after := strings.TrimSpace(firstRunes(fragments[i+1], summaryContextLimit))
		visit(blankSeed{
			questionText:  fmt.Sprintf("...%s _____ %s...", before, after),
			contextBefore: before,
			contextAfter:  after,
		})
	}
}

func (d *LabelingDocument) walkBlanks(visit func(seed blankSeed)) {
	for _, m := range d.Markers {
		visit(blankSeed{
			questionText: fmt.Sprintf("Label %s: Identify the item at this location", m.Label),
			answer:       m.Answer,
		})
	}
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func firstRunes(s string, limit int) string {
	return truncateRunes(s, limit)
}

func lastRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[len(r)-limit:])
}
