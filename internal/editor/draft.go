// Package editor holds the in-memory authoring model for items, questions and
// tests. Nothing here touches storage; services load a draft, apply edits and
// persist what Save returns.
package editor

import (
	"errors"

	"github.com/stemsi/testcraft-backend/internal/model"
)

// MinChoices is the smallest number of choices a question may have.
const MinChoices = 2

// ErrCorrectChoiceOutOfRange is returned by Validate when the correct choice
// index does not point at one of the draft's choices.
var ErrCorrectChoiceOutOfRange = errors.New("correct choice index is out of range")

// Field names a scalar draft field that SetField can replace.
type Field string

const (
	FieldTitle         Field = "title"
	FieldBodyText      Field = "body_text"
	FieldBodyImage     Field = "body_image_ref"
	FieldCorrectChoice Field = "correct_choice_index"
)

// Draft is the editable state of one item or test question. Texts hold
// whatever the current authoring mode shows: plain input in plain mode,
// markup in markup mode. A draft may be transiently invalid while editing.
type Draft struct {
	ItemID             string
	IsNew              bool
	Title              string
	BodyText           string
	BodyImageRef       string
	Choices            []model.Choice
	CorrectChoiceIndex int
	Mode               model.AuthoringMode
}

// NewDraft returns an empty plain-mode draft with two blank choices.
func NewDraft() *Draft {
	return &Draft{
		IsNew:   true,
		Choices: make([]model.Choice, MinChoices),
		Mode:    model.AuthoringModePlain,
	}
}

// FromRequest builds a draft from the editor payload sent by a client.
func FromRequest(req model.DraftRequest) *Draft {
	d := &Draft{
		ItemID:             req.ItemID,
		IsNew:              req.IsNew,
		Title:              req.Title,
		BodyText:           req.BodyText,
		BodyImageRef:       req.BodyImageRef,
		CorrectChoiceIndex: req.CorrectChoiceIndex,
		Mode:               model.AuthoringMode(req.AuthoringMode),
	}
	if !d.Mode.Valid() {
		d.Mode = model.AuthoringModePlain
	}
	d.Choices = make([]model.Choice, len(req.Choices))
	for i, c := range req.Choices {
		d.Choices[i] = model.Choice{Text: c.Text, ImageRef: c.ImageRef}
	}
	d.padChoices()
	return d
}

// Load reopens a stored question. Plain-mode questions come back with the
// original plain text rather than the markup derived from it.
func Load(q model.Question) *Draft {
	d := &Draft{
		ItemID:             q.ItemID,
		Title:              q.Title,
		BodyText:           q.BodyText,
		BodyImageRef:       q.BodyImageRef,
		CorrectChoiceIndex: q.CorrectChoiceIndex,
		Mode:               q.AuthoringMode,
	}
	if !d.Mode.Valid() {
		d.Mode = model.AuthoringModeMarkup
	}

	d.Choices = make([]model.Choice, len(q.Choices))
	copy(d.Choices, q.Choices)

	if d.Mode == model.AuthoringModePlain {
		if q.PlainBodyText != nil {
			d.BodyText = *q.PlainBodyText
		}
		for i := range d.Choices {
			if i < len(q.PlainChoiceTexts) {
				d.Choices[i].Text = q.PlainChoiceTexts[i]
			}
		}
	}
	d.padChoices()
	return d
}

func (d *Draft) padChoices() {
	for len(d.Choices) < MinChoices {
		d.Choices = append(d.Choices, model.Choice{})
	}
}

// SetField replaces a scalar field. It reports false, changing nothing, when
// the field is unknown or value has the wrong type.
func (d *Draft) SetField(field Field, value any) bool {
	switch field {
	case FieldTitle, FieldBodyText, FieldBodyImage:
		s, ok := value.(string)
		if !ok {
			return false
		}
		switch field {
		case FieldTitle:
			d.Title = s
		case FieldBodyText:
			d.BodyText = s
		default:
			d.BodyImageRef = s
		}
		return true
	case FieldCorrectChoice:
		n, ok := value.(int)
		if !ok {
			return false
		}
		d.CorrectChoiceIndex = n
		return true
	}
	return false
}

func (d *Draft) inRange(index int) bool {
	return index >= 0 && index < len(d.Choices)
}

// Validate checks what a draft cannot be saved without. Editing may leave
// the correct index dangling; saving may not.
func (d *Draft) Validate() error {
	if !d.inRange(d.CorrectChoiceIndex) {
		return ErrCorrectChoiceOutOfRange
	}
	return nil
}

// SetChoiceText replaces the text of the choice at index.
func (d *Draft) SetChoiceText(index int, value string) {
	if !d.inRange(index) {
		return
	}
	d.Choices[index].Text = value
}

// SetChoiceImage attaches an image to the choice at index. An empty ref clears it.
func (d *Draft) SetChoiceImage(index int, ref string) {
	if !d.inRange(index) {
		return
	}
	d.Choices[index].ImageRef = ref
}

// ClearChoiceImage detaches the image of the choice at index.
func (d *Draft) ClearChoiceImage(index int) {
	d.SetChoiceImage(index, "")
}

// SetBodyImage attaches an image to the question body. An empty ref clears it.
func (d *Draft) SetBodyImage(ref string) {
	d.BodyImageRef = ref
}

// AddChoice appends an empty choice with an empty image slot.
func (d *Draft) AddChoice() {
	d.Choices = append(d.Choices, model.Choice{})
}

// DeleteChoice removes the choice at index and keeps the correct answer
// pointing at the same choice. When the correct choice itself is removed the
// answer resets to the first choice. Lists at MinChoices are left alone.
func (d *Draft) DeleteChoice(index int) {
	if len(d.Choices) <= MinChoices || !d.inRange(index) {
		return
	}
	d.Choices = append(d.Choices[:index], d.Choices[index+1:]...)

	switch {
	case index < d.CorrectChoiceIndex:
		d.CorrectChoiceIndex--
	case index == d.CorrectChoiceIndex:
		d.CorrectChoiceIndex = 0
	}
}

// MoveChoice moves the choice at from to position to. The correct answer
// follows the choice it pointed at.
func (d *Draft) MoveChoice(from, to int) {
	if !d.inRange(from) || !d.inRange(to) || from == to {
		return
	}
	moved := d.Choices[from]
	d.Choices = append(d.Choices[:from], d.Choices[from+1:]...)
	d.Choices = append(d.Choices[:to], append([]model.Choice{moved}, d.Choices[to:]...)...)

	switch c := d.CorrectChoiceIndex; {
	case c == from:
		d.CorrectChoiceIndex = to
	case from < c && c <= to:
		d.CorrectChoiceIndex--
	case to <= c && c < from:
		d.CorrectChoiceIndex++
	}
}

// SetMode switches the authoring mode. The texts are left as typed.
func (d *Draft) SetMode(mode model.AuthoringMode) {
	if mode.Valid() {
		d.Mode = mode
	}
}

// CorrectChoice returns the display letter of the correct choice, or "" when
// the index does not point at a choice.
func (d *Draft) CorrectChoice() string {
	if !d.inRange(d.CorrectChoiceIndex) {
		return ""
	}
	return ChoiceLetter(d.CorrectChoiceIndex)
}

// Save produces the stored form of the draft. In plain mode the texts are
// converted to markup and the plain input is kept next to them; in markup
// mode the plain fields mirror the markup verbatim.
func (d *Draft) Save() model.Question {
	plainBody := d.BodyText
	plainChoices := make([]string, len(d.Choices))
	choices := make([]model.Choice, len(d.Choices))
	for i, c := range d.Choices {
		plainChoices[i] = c.Text
		choices[i] = c
	}

	body := d.BodyText
	if d.Mode == model.AuthoringModePlain {
		body = ConvertPlainTextToMarkup(body)
		for i := range choices {
			choices[i].Text = ConvertPlainTextToMarkup(choices[i].Text)
		}
	}

	mode := d.Mode
	if !mode.Valid() {
		mode = model.AuthoringModeMarkup
	}

	return model.Question{
		ItemID: d.ItemID,
		Content: model.Content{
			Title:              d.Title,
			BodyText:           body,
			BodyImageRef:       d.BodyImageRef,
			Choices:            choices,
			CorrectChoiceIndex: d.CorrectChoiceIndex,
			AuthoringMode:      mode,
			PlainBodyText:      &plainBody,
			PlainChoiceTexts:   plainChoices,
		},
	}
}
