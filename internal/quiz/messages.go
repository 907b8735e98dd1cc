package quiz

import (
	"fmt"

	"github.com/m3rciful/codemasterbot/internal/models"
)

func easyQuestionText(q *models.Question, remaining int) string {
	return fmt.Sprintf(
		"Questions left: %d\n\nFunction description:\n\n%s\n\nPick the right answer:",
		remaining, q.Description,
	)
}

func hardQuestionText(q *models.Question, remaining int) string {
	return fmt.Sprintf(
		"Questions left: %d\n\nFunction description:\n\n%s\n\nType the function name:",
		remaining, q.Description,
	)
}

func revealText(q *models.Question, answer string, correct bool) string {
	syntax := q.Syntax.String
	if syntax == "" {
		syntax = "—"
	}
	if correct {
		return fmt.Sprintf(
			"✅ Correct, well done!\n\nFunction name: %s\n\nDescription:\n%s\n\nSyntax:\n%s",
			q.Name, q.Description, syntax,
		)
	}
	return fmt.Sprintf(
		"❌ Wrong.\n\nYour answer: %s\nCorrect answer: %s\n\nDescription:\n%s\n\nSyntax:\n%s",
		answer, q.Name, q.Description, syntax,
	)
}

func finishText(score, total int) string {
	return fmt.Sprintf("Quiz finished! Your score: %d out of %d.", score, total)
}

func cancelText() string {
	return "⛔ Quiz ended! ⛔"
}
