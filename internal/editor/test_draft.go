package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stemsi/testcraft-backend/internal/model"
)

// Required-field errors reported by TestDraft.Validate.
var (
	ErrTestNameRequired  = errors.New("test name is required")
	ErrTestClassRequired = errors.New("at least one class must be assigned")
)

// TestDraft is the editable state of a test.
type TestDraft struct {
	ID         string
	Name       string
	ClassNames []string
	Questions  []*Draft
}

// NewTestDraft returns an empty test draft.
func NewTestDraft() *TestDraft {
	return &TestDraft{}
}

// LoadTest reopens a stored test for editing.
func LoadTest(t model.Test) *TestDraft {
	td := &TestDraft{
		ID:         t.ID,
		Name:       t.Name,
		ClassNames: append([]string(nil), t.AssignedClassNames...),
		Questions:  make([]*Draft, len(t.Questions)),
	}
	for i, q := range t.Questions {
		td.Questions[i] = Load(q)
	}
	return td
}

// FromUpdateRequest builds a test draft from the test editor payload.
func FromUpdateRequest(id string, req model.UpdateTestRequest) *TestDraft {
	td := &TestDraft{
		ID:         id,
		Name:       req.Name,
		ClassNames: append([]string(nil), req.ClassNames...),
		Questions:  make([]*Draft, len(req.Questions)),
	}
	for i, q := range req.Questions {
		td.Questions[i] = FromRequest(q)
	}
	return td
}

// SetName replaces the test name.
func (t *TestDraft) SetName(name string) {
	t.Name = name
}

// ToggleClass assigns the class when it is not assigned and unassigns it otherwise.
func (t *TestDraft) ToggleClass(name string) {
	for i, n := range t.ClassNames {
		if n == name {
			t.ClassNames = append(t.ClassNames[:i], t.ClassNames[i+1:]...)
			return
		}
	}
	t.ClassNames = append(t.ClassNames, name)
}

// AddBlankQuestion appends a new plain-mode question and returns it.
func (t *TestDraft) AddBlankQuestion() *Draft {
	d := NewDraft()
	t.Questions = append(t.Questions, d)
	return d
}

// AddQuestionFromItem appends a copy of a bank item, reopened in the mode it was authored in.
func (t *TestDraft) AddQuestionFromItem(item model.Item) *Draft {
	d := Load(model.Question{ItemID: item.ID, Content: item.Content})
	t.Questions = append(t.Questions, d)
	return d
}

// Question returns the question at index or nil.
func (t *TestDraft) Question(index int) *Draft {
	if index < 0 || index >= len(t.Questions) {
		return nil
	}
	return t.Questions[index]
}

// RemoveQuestion drops the question at index.
func (t *TestDraft) RemoveQuestion(index int) {
	if t.Question(index) == nil {
		return
	}
	t.Questions = append(t.Questions[:index], t.Questions[index+1:]...)
}

// MoveQuestion moves the question at from to position to.
func (t *TestDraft) MoveQuestion(from, to int) {
	if t.Question(from) == nil || t.Question(to) == nil || from == to {
		return
	}
	q := t.Questions[from]
	t.Questions = append(t.Questions[:from], t.Questions[from+1:]...)
	t.Questions = append(t.Questions[:to], append([]*Draft{q}, t.Questions[to:]...)...)
}

// Validate checks the fields a test cannot be saved without.
func (t *TestDraft) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrTestNameRequired
	}
	if len(t.ClassNames) == 0 {
		return ErrTestClassRequired
	}
	for i, q := range t.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// Save returns the stored questions of the test and the positions of the new
// questions complete enough to be added to the item bank: a non-blank body
// and at least two non-blank choices.
func (t *TestDraft) Save() (questions []model.Question, bankable []int) {
	questions = make([]model.Question, len(t.Questions))
	for i, d := range t.Questions {
		q := d.Save()
		questions[i] = q
		if d.IsNew && Bankable(q) {
			bankable = append(bankable, i)
		}
	}
	return questions, bankable
}

// Bankable reports whether a saved question is complete enough for the item bank.
func Bankable(q model.Question) bool {
	if strings.TrimSpace(q.BodyText) == "" {
		return false
	}
	filled := 0
	for _, c := range q.Choices {
		if strings.TrimSpace(c.Text) != "" {
			filled++
		}
	}
	return filled >= MinChoices
}
