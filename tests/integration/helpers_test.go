//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func baseURL() string {
	return envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
}

// sampleLesson returns paragraphs of distinct sentences, long enough for several chunks.
func sampleLesson(paragraphs int) string {
	parts := make([]string, paragraphs)
	for i := range parts {
		var b strings.Builder
		for s := 0; s < 10; s++ {
			fmt.Fprintf(&b, "Section %d sentence %d explains how plants turn light into chemical energy. ", i, s)
		}
		parts[i] = strings.TrimSpace(b.String())
	}
	return strings.Join(parts, "\n")
}

func postQuiz(t *testing.T, content string, maxQuestions int) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"content":             content,
		"max_questions_count": maxQuestions,
	})
	if err != nil {
		t.Fatalf("marshal quiz payload: %v", err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/quizzes", baseURL()), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create quiz request failed: %v", err)
	}
	return resp
}

func decodeErrorCode(t *testing.T, resp *http.Response) string {
	t.Helper()

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response failed: %v", err)
	}
	return errResp.Error
}
