// Package scoring computes test scores from a fully loaded test and a
// student's selections. Everything here is pure: no I/O, no shared state,
// safe to call from any number of goroutines.
package scoring

import "lms_backend/internal/model"

// AnswerSet 某道题提交的选项 ID 集合
type AnswerSet map[uint]struct{}

// NewAnswerSet builds a set from ids, collapsing duplicates.
func NewAnswerSet(ids ...uint) AnswerSet {
	set := make(AnswerSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Equal reports set equality: same size, same members.
func (s AnswerSet) Equal(other AnswerSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if _, ok := other[id]; !ok {
			return false
		}
	}
	return true
}

// Submission maps question id to the selected answer ids.
type Submission map[uint]AnswerSet

// Selected returns the selection for a question, empty when absent.
func (s Submission) Selected(questionID uint) AnswerSet {
	if set, ok := s[questionID]; ok && set != nil {
		return set
	}
	return AnswerSet{}
}

// QuestionOutcome 单题评分结果
type QuestionOutcome struct {
	QuestionID uint `json:"questionId"`
	Correct    bool `json:"correct"`
	// Unscorable marks a question without any correct answer. It still
	// counts as correct when nothing was selected for it.
	Unscorable bool `json:"unscorable,omitempty"`
}

type Breakdown struct {
	Questions []QuestionOutcome `json:"questions"`
	Score     int               `json:"score"`
}

// CorrectSet returns the ids of the question's correct answers.
func CorrectSet(q model.Question) AnswerSet {
	set := make(AnswerSet)
	for _, a := range q.Answers {
		if a.IsCorrect {
			set[a.ID] = struct{}{}
		}
	}
	return set
}

// Evaluate walks the test's own questions; submission keys that do not
// belong to the test are never looked at.
func Evaluate(test *model.Test, sub Submission) Breakdown {
	var b Breakdown
	if test == nil {
		return b
	}
	b.Questions = make([]QuestionOutcome, 0, len(test.Questions))
	for _, q := range test.Questions {
		correct := CorrectSet(q)
		outcome := QuestionOutcome{
			QuestionID: q.ID,
			Correct:    sub.Selected(q.ID).Equal(correct),
			Unscorable: len(correct) == 0,
		}
		if outcome.Correct {
			b.Score++
		}
		b.Questions = append(b.Questions, outcome)
	}
	return b
}

// Score awards one point per question whose selection equals its correct
// answer set. No partial credit.
func Score(test *model.Test, sub Submission) int {
	return Evaluate(test, sub).Score
}
