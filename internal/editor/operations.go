package editor

import (
	"strconv"

	"github.com/stemsi/testcraft-backend/internal/model"
)

// Apply runs one editor operation against the draft. Operations on indices
// that do not exist are silently ignored, matching the form behaviour where a
// stale click must not break the edit session. It reports whether the
// operation name was recognised.
func (d *Draft) Apply(op model.EditOperation) bool {
	switch op.Op {
	case "set_title":
		d.SetField(FieldTitle, op.Value)
	case "set_body":
		d.SetField(FieldBodyText, op.Value)
	case "set_body_image":
		d.SetField(FieldBodyImage, op.Value)
	case "set_correct":
		// Value carries the index as text when sent from a select box.
		idx := op.Index
		if op.Value != "" {
			n, err := strconv.Atoi(op.Value)
			if err != nil {
				return true
			}
			idx = n
		}
		d.SetField(FieldCorrectChoice, idx)
	case "set_choice_text":
		d.SetChoiceText(op.Index, op.Value)
	case "set_choice_image":
		d.SetChoiceImage(op.Index, op.Value)
	case "add_choice":
		d.AddChoice()
	case "delete_choice":
		d.DeleteChoice(op.Index)
	case "move_choice":
		d.MoveChoice(op.Index, op.To)
	case "set_mode":
		d.SetMode(model.AuthoringMode(op.Value))
	default:
		return false
	}
	return true
}

// View is the client-facing snapshot of a draft.
type View struct {
	ItemID             string         `json:"item_id,omitempty"`
	IsNew              bool           `json:"is_new"`
	Title              string         `json:"title"`
	BodyText           string         `json:"body_text"`
	BodyImageRef       string         `json:"body_image_ref,omitempty"`
	Choices            []model.Choice `json:"choices"`
	CorrectChoiceIndex int            `json:"correct_choice_index"`
	CorrectChoice      string         `json:"correct_choice"`
	AuthoringMode      string         `json:"authoring_mode"`
	Preview            Preview        `json:"preview"`
}

// Preview is the markup the draft would be saved with.
type Preview struct {
	BodyText string   `json:"body_text"`
	Choices  []string `json:"choices"`
}

// View snapshots the draft together with its markup preview.
func (d *Draft) View() View {
	saved := d.Save()
	preview := Preview{
		BodyText: saved.BodyText,
		Choices:  make([]string, len(saved.Choices)),
	}
	for i, c := range saved.Choices {
		preview.Choices[i] = c.Text
	}

	choices := make([]model.Choice, len(d.Choices))
	copy(choices, d.Choices)

	return View{
		ItemID:             d.ItemID,
		IsNew:              d.IsNew,
		Title:              d.Title,
		BodyText:           d.BodyText,
		BodyImageRef:       d.BodyImageRef,
		Choices:            choices,
		CorrectChoiceIndex: d.CorrectChoiceIndex,
		CorrectChoice:      d.CorrectChoice(),
		AuthoringMode:      string(d.Mode),
		Preview:            preview,
	}
}
