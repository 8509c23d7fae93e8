package quiz

import (
	"fmt"
	"strings"
)

// rawQuiz renders a model response with n well-formed questions, each tagged by prefix.
func rawQuiz(prefix string, n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"question":"%s-%d?","options":{"A":"yes","B":"no","C":"maybe","D":"never"},"answer":"A","explanation":"because"}`, prefix, i)
	}
	return `{"quizDetails":[` + strings.Join(items, ",") + `]}`
}

func questionTexts(qs []Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Question
	}
	return out
}
