package model

import "time"

// AuthoringMode tells whether the stored text was typed as everyday text or as markup.
type AuthoringMode string

const (
	AuthoringModePlain  AuthoringMode = "plain"
	AuthoringModeMarkup AuthoringMode = "markup"
)

// Valid reports whether m is a known authoring mode.
func (m AuthoringMode) Valid() bool {
	return m == AuthoringModePlain || m == AuthoringModeMarkup
}

// Choice is one answer option. Its position in the list decides its display letter.
type Choice struct {
	Text     string `json:"text"`
	ImageRef string `json:"image_ref,omitempty"`
}

// Content is the authored part shared by bank items and test questions.
// BodyText and Choices always hold markup; the Plain* fields keep the
// original plain input so the editor can reopen it without re-deriving it.
type Content struct {
	Title              string        `json:"title"`
	BodyText           string        `json:"body_text"`
	BodyImageRef       string        `json:"body_image_ref,omitempty"`
	Choices            []Choice      `json:"choices"`
	CorrectChoiceIndex int           `json:"correct_choice_index"`
	AuthoringMode      AuthoringMode `json:"authoring_mode"`
	PlainBodyText      *string       `json:"plain_body_text,omitempty"`
	PlainChoiceTexts   []string      `json:"plain_choice_texts,omitempty"`
}

// Item is a reusable question in a teacher's item bank.
type Item struct {
	ID string `json:"id,omitempty"`
	Content
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Question is an item embedded in a test.
type Question struct {
	ItemID string `json:"item_id,omitempty"`
	Content
}

// ChoiceRequest is one choice in an authoring payload.
type ChoiceRequest struct {
	Text     string `json:"text" binding:"max=2000"`
	ImageRef string `json:"image_ref" binding:"omitempty,max=1024"`
}

// DraftRequest carries the editor's current view of a question.
// In plain mode BodyText and the choice texts are the plain input.
type DraftRequest struct {
	ItemID             string          `json:"item_id" binding:"omitempty,max=64"`
	IsNew              bool            `json:"is_new"`
	Title              string          `json:"title" binding:"max=255"`
	BodyText           string          `json:"body_text" binding:"max=5000"`
	BodyImageRef       string          `json:"body_image_ref" binding:"omitempty,max=1024"`
	Choices            []ChoiceRequest `json:"choices" binding:"required,min=2,dive"`
	CorrectChoiceIndex int             `json:"correct_choice_index" binding:"min=0"`
	AuthoringMode      string          `json:"authoring_mode" binding:"omitempty,oneof=plain markup"`
}

// EditOperation is a single editor mutation applied to a draft.
type EditOperation struct {
	Op    string `json:"op" binding:"required,oneof=set_title set_body set_body_image set_correct set_choice_text set_choice_image add_choice delete_choice move_choice set_mode"`
	Index int    `json:"index"`
	To    int    `json:"to"`
	Value string `json:"value"`
}

// ApplyEditsRequest applies a sequence of editor operations to a draft.
type ApplyEditsRequest struct {
	Draft      DraftRequest    `json:"draft" binding:"required"`
	Operations []EditOperation `json:"operations" binding:"dive"`
}

// ConvertRequest asks for a markup preview of plain text.
type ConvertRequest struct {
	Text string `json:"text" binding:"max=5000"`
}
