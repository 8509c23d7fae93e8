package quiz

import "sort"

// OptionKeys lists the answer letters in order; present keys must form a prefix.
var OptionKeys = []string{"A", "B", "C", "D"}

// Question is one validated multiple-choice item.
type Question struct {
	Question    string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer"`
	Explanation string            `json:"explanation"`
}

// Keys returns the present option letters in order.
func (q Question) Keys() []string {
	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Details is the validated payload of a single model response.
type Details struct {
	QuizDetails []Question `json:"quizDetails"`
}

// FinalQuiz is the merged, bounded result handed back to callers.
type FinalQuiz struct {
	ID          string     `json:"id"`
	QuizDetails []Question `json:"quizDetails"`
}

// GenerateRequest describes one prompt for the text-generation model.
type GenerateRequest struct {
	Chunk          string
	QuestionsCount int
}
