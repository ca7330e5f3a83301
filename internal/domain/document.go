package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GroupType identifies the pedagogical kind of a question group and
// selects the document shape its structure is authored in.
type GroupType string

const (
	GroupFormCompletion    GroupType = "form_completion"
	GroupNoteCompletion    GroupType = "note_completion"
	GroupTableCompletion   GroupType = "table_completion"
	GroupSummaryCompletion GroupType = "summary_completion"
	GroupDiagramLabeling   GroupType = "diagram_labeling"
)

// KnownGroupType reports whether t names one of the completion-style shapes.
func KnownGroupType(t GroupType) bool {
	switch t {
	case GroupFormCompletion, GroupNoteCompletion, GroupTableCompletion,
		GroupSummaryCompletion, GroupDiagramLabeling:
		return true
	}
	return false
}

// Document is the structured source content a question group is authored
// from. Each shape supplies its own reading-order traversal of blank
// markers; counting, derivation and preview are implemented once on top
// of that traversal.
type Document interface {
	GroupType() GroupType

	// CanGenerate reports why question generation is refused for the
	// current state of the document, or nil when it may proceed.
	CanGenerate() error

	// walkBlanks visits every blank marker in left-to-right,
	// top-to-bottom reading order. The visit order is the question
	// order the exam taker will encounter.
	walkBlanks(visit func(seed blankSeed))
}

// blankSeed carries everything derivation needs for one marker occurrence.
type blankSeed struct {
	questionText  string
	answer        string
	contextBefore string
	contextAfter  string
}

// FormDocument is a label/value form; values may embed <input> markers.
type FormDocument struct {
	Title    string        `json:"title"`
	Sections []FormSection `json:"sections"`
}

type FormSection struct {
	Title  string      `json:"title"`
	Fields []FormField `json:"fields"`
}

type FormField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func NewFormDocument() *FormDocument {
	return &FormDocument{Sections: []FormSection{}}
}

func (d *FormDocument) GroupType() GroupType { return GroupFormCompletion }

func (d *FormDocument) CanGenerate() error {
	if strings.TrimSpace(d.Title) == "" {
		return NewGenerationBlockedError("A title is required before generating questions")
	}
	if CountBlanks(d) == 0 {
		return NewGenerationBlockedError("Add at least one <input> blank before generating questions")
	}
	return nil
}

// NoteDocument is a sectioned note sheet. An item is either a plain text
// leaf or a prefixed list of sub-items; blanks may appear in either.
type NoteDocument struct {
	Title    string        `json:"title"`
	Sections []NoteSection `json:"sections"`
}

type NoteSection struct {
	Title string     `json:"title"`
	Items []NoteItem `json:"items"`
}

type NoteItem struct {
	Text     string   `json:"text,omitempty"`
	Prefix   string   `json:"prefix,omitempty"`
	Subitems []string `json:"items,omitempty"`
}

// Nested reports whether the item is a prefixed sub-item list rather
// than a plain leaf.
func (i NoteItem) Nested() bool {
	return len(i.Subitems) > 0 || i.Prefix != ""
}

func NewNoteDocument() *NoteDocument {
	return &NoteDocument{Sections: []NoteSection{}}
}

func (d *NoteDocument) GroupType() GroupType { return GroupNoteCompletion }

func (d *NoteDocument) CanGenerate() error {
	if strings.TrimSpace(d.Title) == "" {
		return NewGenerationBlockedError("A title is required before generating questions")
	}
	if CountBlanks(d) == 0 {
		return NewGenerationBlockedError("Add at least one <input> blank before generating questions")
	}
	return nil
}

// TableDocument is a header row plus a grid of cells; any cell may embed
// <input> markers.
type TableDocument struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

func NewTableDocument() *TableDocument {
	return &TableDocument{Headers: []string{}, Rows: [][]string{}}
}

func (d *TableDocument) GroupType() GroupType { return GroupTableCompletion }

func (d *TableDocument) CanGenerate() error {
	if strings.TrimSpace(d.Title) == "" {
		return NewGenerationBlockedError("A title is required before generating questions")
	}
	if CountBlanks(d) == 0 {
		return NewGenerationBlockedError("Add at least one <input> blank before generating questions")
	}
	return nil
}

// SummaryDocument is one flat passage; blanks are runs of three or more
// underscores rather than tags.
type SummaryDocument struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func NewSummaryDocument() *SummaryDocument {
	return &SummaryDocument{}
}

func (d *SummaryDocument) GroupType() GroupType { return GroupSummaryCompletion }

func (d *SummaryDocument) CanGenerate() error {
	if strings.TrimSpace(d.Title) == "" {
		return NewGenerationBlockedError("A title is required before generating questions")
	}
	if strings.TrimSpace(d.Text) == "" {
		return NewGenerationBlockedError("Summary text is required before generating questions")
	}
	if CountBlanks(d) == 0 {
		return NewGenerationBlockedError("Mark at least one blank (___) before generating questions")
	}
	return nil
}

// LabelingDocument is an image with coordinate markers. The markers are
// the blanks; the marker list is the durable source of truth and the
// derived questions are a view of it.
type LabelingDocument struct {
	Title    string   `json:"title"`
	ImageURL string   `json:"image_url"`
	Markers  []Marker `json:"markers"`
}

// Marker pins one label point on the image. X and Y are percentages in
// [0,100] of the rendered image size.
type Marker struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Label  string  `json:"label"`
	Answer string  `json:"answer"`
}

func NewLabelingDocument() *LabelingDocument {
	return &LabelingDocument{Markers: []Marker{}}
}

func (d *LabelingDocument) GroupType() GroupType { return GroupDiagramLabeling }

func (d *LabelingDocument) CanGenerate() error {
	if strings.TrimSpace(d.Title) == "" {
		return NewGenerationBlockedError("A title is required before generating questions")
	}
	if len(d.Markers) == 0 {
		return NewGenerationBlockedError("Place at least one marker before generating questions")
	}
	return nil
}

// EmptyDocument returns the zero-value document for a group type.
func EmptyDocument(t GroupType) (Document, error) {
	switch t {
	case GroupFormCompletion:
		return NewFormDocument(), nil
	case GroupNoteCompletion:
		return NewNoteDocument(), nil
	case GroupTableCompletion:
		return NewTableDocument(), nil
	case GroupSummaryCompletion:
		return NewSummaryDocument(), nil
	case GroupDiagramLabeling:
		return NewLabelingDocument(), nil
	}
	return nil, NewUnknownGroupTypeError(string(t))
}

// DecodeDocument hydrates a previously serialized structure. A raw value
// that is empty or not valid JSON yields the empty document for the
// group type; hydration never fails on malformed input.
func DecodeDocument(t GroupType, raw string) (Document, error) {
	empty, err := EmptyDocument(t)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return empty, nil
	}
	if err := json.Unmarshal([]byte(raw), empty); err != nil {
		fresh, _ := EmptyDocument(t)
		return fresh, nil
	}
	return empty, nil
}

// DecodeDocumentStrict hydrates a submitted structure and rejects input
// that does not unmarshal into the group type's shape. Write boundaries
// use it so a malformed payload cannot silently overwrite a stored
// structure with the empty document; DecodeDocument stays the tolerant
// loading path.
func DecodeDocumentStrict(t GroupType, raw string) (Document, error) {
	empty, err := EmptyDocument(t)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return empty, nil
	}
	if err := json.Unmarshal([]byte(raw), empty); err != nil {
		return nil, NewInvalidInputError(fmt.Sprintf(
			"Document structure does not match group type %s", t))
	}
	return empty, nil
}

// EncodeDocument serializes a document for persistence.
func EncodeDocument(doc Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", NewInternalError("Failed to serialize document structure", err)
	}
	return string(data), nil
}
