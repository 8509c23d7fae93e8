package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestExtractQuizObject_StripsSurroundingText(t *testing.T) {
	raw := "Sure! Here is your quiz:\n```json\n" + rawQuiz("q", 1) + "\n```\nGood luck."

	v, err := ExtractQuizObject(raw)

	require.NoError(t, err)
	assert.True(t, IsValidQuizDetails(v))
}

func TestExtractQuizObject_Failures(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		reason RejectReason
	}{
		{name: "no braces", raw: "I cannot help with that.", reason: RejectMalformedStructure},
		{name: "reversed braces", raw: "} oops {", reason: RejectMalformedStructure},
		{name: "only opening brace", raw: `{"quizDetails": [`, reason: RejectMalformedStructure},
		{name: "broken json", raw: `{"quizDetails": [1, }`, reason: RejectMalformedJSON},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractQuizObject(tc.raw)
			require.ErrorIs(t, err, ErrMalformedResponse)
			assert.Equal(t, tc.reason, ReasonOf(err))
		})
	}
}

func TestIsValidQuizDetails(t *testing.T) {
	cases := []struct {
		name  string
		json  string
		valid bool
	}{
		{name: "full question", json: rawQuiz("q", 2), valid: true},
		{
			name:  "two options answer B",
			json:  `{"quizDetails":[{"question":"Q?","options":{"A":"x","B":"y"},"answer":"B","explanation":"e"}]}`,
			valid: true,
		},
		{
			name:  "only option A",
			json:  `{"quizDetails":[{"question":"Q?","options":{"A":"x"},"answer":"A","explanation":"e"}]}`,
			valid: false,
		},
		{
			name:  "answer outside present prefix",
			json:  `{"quizDetails":[{"question":"Q?","options":{"A":"x","B":"y","D":"z"},"answer":"D","explanation":"e"}]}`,
			valid: false,
		},
		{
			name:  "gap after prefix is ignored",
			json:  `{"quizDetails":[{"question":"Q?","options":{"A":"x","B":"y","D":"z"},"answer":"A","explanation":"e"}]}`,
			valid: true,
		},
		{
			name:  "empty option text",
			json:  `{"quizDetails":[{"question":"Q?","options":{"A":"x","B":""},"answer":"A","explanation":"e"}]}`,
			valid: false,
		},
		{
			name:  "missing explanation",
			json:  `{"quizDetails":[{"question":"Q?","options":{"A":"x","B":"y"},"answer":"A"}]}`,
			valid: false,
		},
		{
			name:  "empty question",
			json:  `{"quizDetails":[{"question":"","options":{"A":"x","B":"y"},"answer":"A","explanation":"e"}]}`,
			valid: false,
		},
		{
			name:  "non-string answer",
			json:  `{"quizDetails":[{"question":"Q?","options":{"A":"x","B":"y"},"answer":1,"explanation":"e"}]}`,
			valid: false,
		},
		{name: "empty array", json: `{"quizDetails":[]}`, valid: false},
		{name: "missing key", json: `{"questions":[]}`, valid: false},
		{name: "not an object", json: `[1,2]`, valid: false},
		{
			name: "one bad question spoils the set",
			json: `{"quizDetails":[` +
				`{"question":"Q1?","options":{"A":"x","B":"y"},"answer":"A","explanation":"e"},` +
				`{"question":"Q2?","options":{"A":"x"},"answer":"A","explanation":"e"}]}`,
			valid: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsValidQuizDetails(decode(t, tc.json)))
		})
	}
}

func TestParseResponse(t *testing.T) {
	details, err := ParseResponse("preamble " + rawQuiz("bio", 3))

	require.NoError(t, err)
	require.Len(t, details.QuizDetails, 3)
	first := details.QuizDetails[0]
	assert.Equal(t, "bio-0?", first.Question)
	assert.Equal(t, "A", first.Answer)
	assert.Equal(t, "because", first.Explanation)
	assert.Equal(t, []string{"A", "B", "C", "D"}, first.Keys())
}

func TestParseResponse_DropsOptionsBeyondPrefix(t *testing.T) {
	raw := `{"quizDetails":[{"question":"Q?","options":{"A":"x","B":"y","D":"z"},"answer":"B","explanation":"e"}]}`

	details, err := ParseResponse(raw)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "x", "B": "y"}, details.QuizDetails[0].Options)
}

func TestParseResponse_RejectReasons(t *testing.T) {
	cases := map[string]RejectReason{
		"":                    RejectEmptyResponse,
		"   ":                 RejectEmptyResponse,
		"no json here":        RejectMalformedStructure,
		`{"quizDetails": ]}`:  RejectMalformedJSON,
		`{"quizDetails": []}`: RejectInvalidDetails,
	}

	for raw, want := range cases {
		_, err := ParseResponse(raw)
		require.Error(t, err, "raw %q", raw)
		assert.ErrorIs(t, err, ErrMalformedResponse)
		assert.Equal(t, want, ReasonOf(err), "raw %q", raw)
	}
}

func TestReasonOf_ForeignError(t *testing.T) {
	assert.Equal(t, RejectReason(""), ReasonOf(assert.AnError))
}
