package editor

import (
	"testing"

	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestDraft_Validate(t *testing.T) {
	td := NewTestDraft()
	assert.ErrorIs(t, td.Validate(), ErrTestNameRequired)

	td.SetName("  Unit 1  ")
	assert.ErrorIs(t, td.Validate(), ErrTestClassRequired)

	td.ToggleClass("Algebra A")
	assert.NoError(t, td.Validate())

	q := td.AddBlankQuestion()
	q.CorrectChoiceIndex = 5
	assert.ErrorIs(t, td.Validate(), ErrCorrectChoiceOutOfRange)
	q.CorrectChoiceIndex = 1
	assert.NoError(t, td.Validate())

	td.ToggleClass("Algebra A")
	assert.Empty(t, td.ClassNames)
}

func TestTestDraft_SaveCollectsCompleteNewQuestions(t *testing.T) {
	td := NewTestDraft()

	complete := td.AddBlankQuestion()
	complete.BodyText = "What is 2+2"
	complete.SetChoiceText(0, "4")
	complete.SetChoiceText(1, "5")

	incomplete := td.AddBlankQuestion()
	incomplete.BodyText = "Unfinished"
	incomplete.SetChoiceText(0, "only one")

	fromBank := td.AddQuestionFromItem(model.Item{
		ID: "item-1",
		Content: model.Content{
			BodyText:      "x",
			Choices:       []model.Choice{{Text: "a"}, {Text: "b"}},
			AuthoringMode: model.AuthoringModeMarkup,
		},
	})
	assert.False(t, fromBank.IsNew)

	questions, bankable := td.Save()

	require.Len(t, questions, 3)
	assert.Equal(t, []int{0}, bankable)
	assert.Equal(t, `\text{What} \ \text{is} \ 2+2`, questions[0].BodyText)
	assert.Equal(t, "item-1", questions[2].ItemID)
}

func TestTestDraft_AddQuestionFromPlainItem(t *testing.T) {
	plain := "Name a prime"
	item := model.Item{
		ID: "item-2",
		Content: model.Content{
			BodyText:         `\text{Name} \ \text{a} \ \text{prime}`,
			Choices:          []model.Choice{{Text: `\text{four}`}, {Text: "7"}},
			AuthoringMode:    model.AuthoringModePlain,
			PlainBodyText:    &plain,
			PlainChoiceTexts: []string{"four", "7"},
		},
	}

	td := NewTestDraft()
	d := td.AddQuestionFromItem(item)

	assert.Equal(t, "Name a prime", d.BodyText)
	assert.Equal(t, "four", d.Choices[0].Text)
}

func TestTestDraft_RemoveAndMove(t *testing.T) {
	td := NewTestDraft()
	for _, title := range []string{"q1", "q2", "q3"} {
		td.AddBlankQuestion().Title = title
	}

	td.MoveQuestion(0, 2)
	td.RemoveQuestion(0)
	td.RemoveQuestion(9)

	require.Len(t, td.Questions, 2)
	assert.Equal(t, "q3", td.Question(0).Title)
	assert.Equal(t, "q1", td.Question(1).Title)
	assert.Nil(t, td.Question(2))
}

func TestLoadTest(t *testing.T) {
	test := model.Test{
		ID:                 "t1",
		Name:               "Quiz",
		AssignedClassNames: []string{"A"},
		Questions: []model.Question{
			{Content: model.Content{BodyText: "x", Choices: []model.Choice{{Text: "1"}, {Text: "2"}}, AuthoringMode: model.AuthoringModeMarkup}},
		},
	}

	td := LoadTest(test)
	td.ToggleClass("B")

	assert.Equal(t, []string{"A"}, test.AssignedClassNames)
	assert.Equal(t, []string{"A", "B"}, td.ClassNames)
	require.Len(t, td.Questions, 1)
	assert.False(t, td.Questions[0].IsNew)
}
