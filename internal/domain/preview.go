package domain

import (
	"fmt"
	"strings"
)

// PreviewSpan is one run of display text. Blanks carry their question
// number so the UI can render numbered gaps; the model is plain data and
// is never interpolated into markup by this service.
type PreviewSpan struct {
	Text    string `json:"text,omitempty"`
	IsBlank bool   `json:"is_blank"`
	Number  int    `json:"number,omitempty"`
}

// PreviewRow is one display line: an optional leading label plus spans.
type PreviewRow struct {
	Label    string        `json:"label,omitempty"`
	IsHeader bool          `json:"is_header,omitempty"`
	Spans    []PreviewSpan `json:"spans"`
}

// PreviewModel is the renderable view of a document. Blank numbering
// follows the same traversal order as counting and derivation.
type PreviewModel struct {
	Title    string       `json:"title"`
	ImageURL string       `json:"image_url,omitempty"`
	Rows     []PreviewRow `json:"rows"`
}

// Preview builds the view-model for any document shape.
func Preview(doc Document) *PreviewModel {
	switch d := doc.(type) {
	case *FormDocument:
		return previewForm(d)
	case *NoteDocument:
		return previewNote(d)
	case *TableDocument:
		return previewTable(d)
	case *SummaryDocument:
		return previewSummary(d)
	case *LabelingDocument:
		return previewLabeling(d)
	}
	return &PreviewModel{Rows: []PreviewRow{}}
}

// splitSpans turns a leaf string into text/blank spans, numbering blanks
// from *next and advancing it.
func splitSpans(text, pattern string, next *int) []PreviewSpan {
	var re = tagBlankRe
	if pattern == "_" {
		re = underscoreRunRe
	}
	spans := []PreviewSpan{}
	rest := text
	for {
		loc := re.FindStringIndex(rest)
		if loc == nil {
			break
		}
		if loc[0] > 0 {
			spans = append(spans, PreviewSpan{Text: rest[:loc[0]]})
		}
		*next++
		spans = append(spans, PreviewSpan{IsBlank: true, Number: *next})
		rest = rest[loc[1]:]
	}
	if rest != "" {
		spans = append(spans, PreviewSpan{Text: rest})
	}
	return spans
}

func previewForm(d *FormDocument) *PreviewModel {
	m := &PreviewModel{Title: d.Title, Rows: []PreviewRow{}}
	n := 0
	for _, sec := range d.Sections {
		if strings.TrimSpace(sec.Title) != "" {
			m.Rows = append(m.Rows, PreviewRow{Label: sec.Title, IsHeader: true, Spans: []PreviewSpan{}})
		}
		for _, field := range sec.Fields {
			m.Rows = append(m.Rows, PreviewRow{
				Label: field.Label,
				Spans: splitSpans(field.Value, "<input>", &n),
			})
		}
	}
	return m
}

func previewNote(d *NoteDocument) *PreviewModel {
	m := &PreviewModel{Title: d.Title, Rows: []PreviewRow{}}
	n := 0
	for _, sec := range d.Sections {
		if strings.TrimSpace(sec.Title) != "" {
			m.Rows = append(m.Rows, PreviewRow{Label: sec.Title, IsHeader: true, Spans: []PreviewSpan{}})
		}
		for _, item := range sec.Items {
			if item.Nested() {
				for _, sub := range item.Subitems {
					m.Rows = append(m.Rows, PreviewRow{
						Label: item.Prefix,
						Spans: splitSpans(sub, "<input>", &n),
					})
				}
				continue
			}
			m.Rows = append(m.Rows, PreviewRow{Spans: splitSpans(item.Text, "<input>", &n)})
		}
	}
	return m
}

func previewTable(d *TableDocument) *PreviewModel {
	m := &PreviewModel{Title: d.Title, Rows: []PreviewRow{}}
	if len(d.Headers) > 0 {
		header := PreviewRow{IsHeader: true, Spans: []PreviewSpan{}}
		for _, h := range d.Headers {
			header.Spans = append(header.Spans, PreviewSpan{Text: h})
		}
		m.Rows = append(m.Rows, header)
	}
	n := 0
	for _, row := range d.Rows {
		r := PreviewRow{Spans: []PreviewSpan{}}
		for _, cell := range row {
			r.Spans = append(r.Spans, splitSpans(cell, "<input>", &n)...)
		}
		m.Rows = append(m.Rows, r)
	}
	return m
}

func previewSummary(d *SummaryDocument) *PreviewModel {
	n := 0
	return &PreviewModel{
		Title: d.Title,
		Rows:  []PreviewRow{{Spans: splitSpans(d.Text, "_", &n)}},
	}
}

func previewLabeling(d *LabelingDocument) *PreviewModel {
	m := &PreviewModel{Title: d.Title, ImageURL: d.ImageURL, Rows: []PreviewRow{}}
	for i, marker := range d.Markers {
		m.Rows = append(m.Rows, PreviewRow{
			Label: fmt.Sprintf("%d. %s", i+1, marker.Label),
			Spans: []PreviewSpan{{IsBlank: true, Number: i + 1}},
		})
	}
	return m
}
