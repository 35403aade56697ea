package value_objects

import "strings"

// WorkType is the Classroom coursework type.
type WorkType string

const (
	WorkTypeAssignment          WorkType = "ASSIGNMENT"
	WorkTypeShortAnswerQuestion WorkType = "SHORT_ANSWER_QUESTION"
	WorkTypeMultipleChoice      WorkType = "MULTIPLE_CHOICE"
)

// WorkKind collapses work types into the two variants scoring cares about.
type WorkKind int

const (
	KindAssignment WorkKind = iota
	KindQuiz
)

// ParseWorkType normalizes a work type; empty input means an assignment.
func ParseWorkType(s string) WorkType {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return WorkTypeAssignment
	}
	return WorkType(s)
}

// Kind reports whether the work is quiz-like.
func (w WorkType) Kind() WorkKind {
	switch w {
	case WorkTypeShortAnswerQuestion, WorkTypeMultipleChoice:
		return KindQuiz
	default:
		return KindAssignment
	}
}

// IsQuiz is shorthand for Kind() == KindQuiz.
func (w WorkType) IsQuiz() bool {
	return w.Kind() == KindQuiz
}

func (w WorkType) String() string {
	return string(w)
}

func (k WorkKind) String() string {
	if k == KindQuiz {
		return "quiz"
	}
	return "assignment"
}
