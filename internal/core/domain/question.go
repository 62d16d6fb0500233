package domain

import (
	"time"

	"github.com/google/uuid"
)

type Question struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Text          string    `json:"text"`
	OwnerID       uuid.UUID `json:"owner_id"`
	OwnerUsername string    `json:"owner"`
	Choices       []Choice  `json:"choices,omitempty"`
	Created       time.Time `json:"created"`
	Modified      time.Time `json:"modified"`
}

// IsOwnedBy reports whether userID created the question.
func (q *Question) IsOwnedBy(userID uuid.UUID) bool {
	return q.OwnerID == userID
}

// ChoiceTexts returns the texts of the loaded choices in order.
func (q *Question) ChoiceTexts() []string {
	texts := make([]string, 0, len(q.Choices))
	for _, c := range q.Choices {
		texts = append(texts, c.Text)
	}
	return texts
}

type Choice struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewChoices builds unsaved choices for questionID, one per text.
func NewChoices(questionID uuid.UUID, texts []string, now time.Time) []Choice {
	choices := make([]Choice, 0, len(texts))
	for i, text := range texts {
		choices = append(choices, Choice{
			ID:         uuid.New(),
			QuestionID: questionID,
			Text:       text,
			// keeps insertion order stable when ordering by creation time
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}
	return choices
}
