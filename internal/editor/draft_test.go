package editor

import (
	"testing"

	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftWithChoices(texts ...string) *Draft {
	d := NewDraft()
	d.Choices = nil
	for _, t := range texts {
		d.Choices = append(d.Choices, model.Choice{Text: t})
	}
	return d
}

func choiceTexts(d *Draft) []string {
	out := make([]string, len(d.Choices))
	for i, c := range d.Choices {
		out[i] = c.Text
	}
	return out
}

func TestNewDraft(t *testing.T) {
	d := NewDraft()
	assert.Len(t, d.Choices, MinChoices)
	assert.Equal(t, model.AuthoringModePlain, d.Mode)
	assert.True(t, d.IsNew)
}

func TestDeleteChoice_KeepsMinimum(t *testing.T) {
	d := draftWithChoices("a", "b")
	d.DeleteChoice(0)
	assert.Len(t, d.Choices, 2)
}

func TestDeleteChoice_BeforeCorrect(t *testing.T) {
	d := draftWithChoices("a", "b", "c")
	d.CorrectChoiceIndex = 2

	d.DeleteChoice(0)

	assert.Equal(t, []string{"b", "c"}, choiceTexts(d))
	assert.Equal(t, 1, d.CorrectChoiceIndex)
}

func TestDeleteChoice_Correct(t *testing.T) {
	d := draftWithChoices("a", "b", "c")
	d.CorrectChoiceIndex = 2

	d.DeleteChoice(2)

	assert.Equal(t, 0, d.CorrectChoiceIndex)
}

func TestDeleteChoice_AfterCorrect(t *testing.T) {
	d := draftWithChoices("a", "b", "c")
	d.CorrectChoiceIndex = 1

	d.DeleteChoice(2)

	assert.Equal(t, 1, d.CorrectChoiceIndex)
}

func TestDeleteChoice_OutOfRange(t *testing.T) {
	d := draftWithChoices("a", "b", "c")
	d.DeleteChoice(3)
	d.DeleteChoice(-1)
	assert.Len(t, d.Choices, 3)
}

func TestValidate_CorrectChoiceInRange(t *testing.T) {
	d := draftWithChoices("a", "b")
	assert.NoError(t, d.Validate())

	d.CorrectChoiceIndex = 2
	assert.ErrorIs(t, d.Validate(), ErrCorrectChoiceOutOfRange)

	d.CorrectChoiceIndex = -1
	assert.ErrorIs(t, d.Validate(), ErrCorrectChoiceOutOfRange)
}

func TestAddChoice(t *testing.T) {
	d := NewDraft()
	for i := 0; i < 30; i++ {
		d.AddChoice()
	}
	assert.Len(t, d.Choices, 32)
	assert.Empty(t, d.Choices[31].ImageRef)
}

func TestSetChoiceText(t *testing.T) {
	d := draftWithChoices("a", "b")
	d.SetChoiceText(1, "beta")
	d.SetChoiceText(5, "ignored")
	assert.Equal(t, []string{"a", "beta"}, choiceTexts(d))
}

func TestSetChoiceImage(t *testing.T) {
	d := draftWithChoices("a", "b", "c")
	d.SetChoiceImage(1, "itemImages/u1/pic.png")
	d.DeleteChoice(0)
	assert.Equal(t, "itemImages/u1/pic.png", d.Choices[0].ImageRef)
}

func TestMoveChoice_CorrectFollows(t *testing.T) {
	d := draftWithChoices("a", "b", "c", "d")
	d.CorrectChoiceIndex = 2

	d.MoveChoice(2, 0)
	assert.Equal(t, []string{"c", "a", "b", "d"}, choiceTexts(d))
	assert.Equal(t, 0, d.CorrectChoiceIndex)

	d.MoveChoice(1, 3)
	assert.Equal(t, []string{"c", "b", "d", "a"}, choiceTexts(d))
	assert.Equal(t, 0, d.CorrectChoiceIndex)

	d.MoveChoice(0, 2)
	assert.Equal(t, []string{"b", "d", "c", "a"}, choiceTexts(d))
	assert.Equal(t, 2, d.CorrectChoiceIndex)
}

func TestSetField(t *testing.T) {
	d := NewDraft()

	assert.True(t, d.SetField(FieldTitle, "Fractions"))
	assert.True(t, d.SetField(FieldCorrectChoice, 7))
	assert.False(t, d.SetField(FieldCorrectChoice, "1"))
	assert.False(t, d.SetField(Field("unknown"), "x"))

	assert.Equal(t, "Fractions", d.Title)
	assert.Equal(t, 7, d.CorrectChoiceIndex)
	assert.Equal(t, "", d.CorrectChoice())
}

func TestSave_PlainModeKeepsOriginal(t *testing.T) {
	d := draftWithChoices("four", "5")
	d.BodyText = "Solve 2+2 now"

	q := d.Save()

	assert.Equal(t, `\text{Solve} \ 2+2 \ \text{now}`, q.BodyText)
	assert.Equal(t, `\text{four}`, q.Choices[0].Text)
	assert.Equal(t, "5", q.Choices[1].Text)
	require.NotNil(t, q.PlainBodyText)
	assert.Equal(t, "Solve 2+2 now", *q.PlainBodyText)
	assert.Equal(t, []string{"four", "5"}, q.PlainChoiceTexts)
	assert.Equal(t, model.AuthoringModePlain, q.AuthoringMode)
}

func TestSave_MarkupModeMirrors(t *testing.T) {
	d := draftWithChoices(`\frac{1}{2}`, `\pi`)
	d.Mode = model.AuthoringModeMarkup
	d.BodyText = `x^2 = 4`

	q := d.Save()

	assert.Equal(t, `x^2 = 4`, q.BodyText)
	require.NotNil(t, q.PlainBodyText)
	assert.Equal(t, q.BodyText, *q.PlainBodyText)
	assert.Equal(t, []string{`\frac{1}{2}`, `\pi`}, q.PlainChoiceTexts)
}

func TestSaveLoad_RoundTripPlain(t *testing.T) {
	d := draftWithChoices("two apples", "3")
	d.BodyText = "How many apples\nare left"
	d.CorrectChoiceIndex = 1

	reopened := Load(d.Save())

	assert.Equal(t, model.AuthoringModePlain, reopened.Mode)
	assert.Equal(t, "How many apples\nare left", reopened.BodyText)
	assert.Equal(t, []string{"two apples", "3"}, choiceTexts(reopened))
	assert.Equal(t, 1, reopened.CorrectChoiceIndex)
}

func TestLoad_LegacyWithoutMode(t *testing.T) {
	q := model.Question{Content: model.Content{BodyText: `\text{Hi}`, Choices: []model.Choice{{Text: "a"}}}}

	d := Load(q)

	assert.Equal(t, model.AuthoringModeMarkup, d.Mode)
	assert.Equal(t, `\text{Hi}`, d.BodyText)
	assert.Len(t, d.Choices, MinChoices)
}

func TestApply(t *testing.T) {
	d := NewDraft()
	ops := []model.EditOperation{
		{Op: "set_body", Value: "Pick one"},
		{Op: "add_choice"},
		{Op: "set_choice_text", Index: 2, Value: "third"},
		{Op: "set_correct", Value: "2"},
		{Op: "delete_choice", Index: 0},
		{Op: "set_mode", Value: "markup"},
	}
	for _, op := range ops {
		assert.True(t, d.Apply(op), op.Op)
	}
	assert.False(t, d.Apply(model.EditOperation{Op: "explode"}))

	assert.Equal(t, "Pick one", d.BodyText)
	assert.Equal(t, []string{"", "third"}, choiceTexts(d))
	assert.Equal(t, 1, d.CorrectChoiceIndex)
	assert.Equal(t, model.AuthoringModeMarkup, d.Mode)

	v := d.View()
	assert.Equal(t, "b", v.CorrectChoice)
	assert.Equal(t, "Pick one", v.Preview.BodyText)
}
