package question

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/logiprep/internal/topic"
)

func sample() Question {
	return New("q1", topic.Inference, "A passage.", "What follows?",
		[]string{"True", "Probably True", "Insufficient Data", "Probably False", "False"}, 2, "Nothing is known.")
}

func TestPassageID_Deterministic(t *testing.T) {
	a := PassageID("The tram opened in 2019.")
	b := PassageID("  The tram opened in 2019.\n")
	c := PassageID("A different passage.")

	assert.NotEmpty(t, a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Empty(t, PassageID("   "))
}

func TestGroupKey(t *testing.T) {
	q := sample()
	assert.True(t, q.HasPassage())
	assert.Equal(t, "p:"+q.PassageID, q.GroupKey())

	solo := New("q2", topic.Deduction, "", "Does it follow?", []string{"Yes", "No"}, 0, "")
	assert.False(t, solo.HasPassage())
	assert.Equal(t, "q:q2", solo.GroupKey())
}

func TestIsCorrect(t *testing.T) {
	q := sample()
	assert.True(t, q.IsCorrect("Insufficient Data"))
	assert.False(t, q.IsCorrect("True"))
	assert.False(t, q.IsCorrect("not an option"))
	assert.Equal(t, "Insufficient Data", q.CorrectOption())
	assert.True(t, q.HasOption("False"))
	assert.False(t, q.HasOption("Maybe"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Question)
		wantErr bool
	}{
		{"valid", func(q *Question) {}, false},
		{"empty id", func(q *Question) { q.ID = "" }, true},
		{"bad topic", func(q *Question) { q.Topic = 0 }, true},
		{"one option", func(q *Question) { q.Options = []string{"Only"}; q.CorrectIndex = 0 }, true},
		{"eleven options", func(q *Question) {
			q.Options = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
			q.CorrectIndex = 0
		}, true},
		{"ten options", func(q *Question) {
			q.Options = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
			q.CorrectIndex = 9
		}, false},
		{"duplicate option", func(q *Question) { q.Options = []string{"A", "A"}; q.CorrectIndex = 0 }, true},
		{"blank option", func(q *Question) { q.Options = []string{"A", " "}; q.CorrectIndex = 0 }, true},
		{"index too high", func(q *Question) { q.CorrectIndex = 5 }, true},
		{"negative index", func(q *Question) { q.CorrectIndex = -1 }, true},
		{"stale passage id", func(q *Question) { q.PassageText = "edited" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := sample()
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_CopiesOptions(t *testing.T) {
	opts := []string{"Yes", "No"}
	q := New("q3", topic.Arguments, "", "Strong?", opts, 0, "")
	opts[0] = "Changed"
	assert.Equal(t, "Yes", q.Options[0])
}

func TestGrade(t *testing.T) {
	q := sample()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rec := Grade(q, "Insufficient Data", at)
	require.True(t, rec.Correct)
	assert.Equal(t, "q1", rec.QuestionID)
	assert.Equal(t, topic.Inference, rec.Topic)
	assert.Equal(t, at, rec.AnsweredAt)

	assert.False(t, Grade(q, "True", at).Correct)
}
