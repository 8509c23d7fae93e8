package lesson

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Default segmentation policy.
const (
	DefaultMaxWordsPerChunk = 100
	DefaultMinSensibleWords = 40
)

// Paragraph units are separated by one or more line breaks.
var unitSplitter = regexp.MustCompile(`\n+`)

// Chunk is a contiguous, newline-joined span of lesson paragraphs sized for one prompt.
type Chunk struct {
	Text      string
	WordCount int
}

// SegmenterOptions bounds the size of produced chunks.
type SegmenterOptions struct {
	// MaxWordsPerChunk is the word budget a chunk may grow to by normal joining.
	MaxWordsPerChunk int
	// MinSensibleWords is the size below which a chunk keeps absorbing content.
	MinSensibleWords int
}

// DefaultSegmenterOptions returns the stock 100/40 policy.
func DefaultSegmenterOptions() SegmenterOptions {
	return SegmenterOptions{
		MaxWordsPerChunk: DefaultMaxWordsPerChunk,
		MinSensibleWords: DefaultMinSensibleWords,
	}
}

// Segmenter splits lesson content into prompt chunks.
type Segmenter struct {
	opts SegmenterOptions
}

// NewSegmenter builds a Segmenter. Non-positive limits fall back to the defaults.
func NewSegmenter(opts SegmenterOptions) *Segmenter {
	if opts.MaxWordsPerChunk <= 0 {
		opts.MaxWordsPerChunk = DefaultMaxWordsPerChunk
	}
	if opts.MinSensibleWords <= 0 {
		opts.MinSensibleWords = DefaultMinSensibleWords
	}
	return &Segmenter{opts: opts}
}

// Options reports the effective policy.
func (s *Segmenter) Options() SegmenterOptions {
	return s.opts
}

// Segment splits content with the default policy and returns only the chunk texts.
func Segment(content string) []string {
	chunks := NewSegmenter(DefaultSegmenterOptions()).ToPromptChunks(content)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}

// ToPromptChunks greedily merges paragraph units into chunks in a single forward pass.
//
// A unit joins the previous chunk when that chunk is still short, when both fit the
// word budget together, or when the unit is itself short and cannot usefully be
// combined with the unit after it. A short trailing chunk is folded into its
// predecessor at the end. The result always holds at least one chunk.
func (s *Segmenter) ToPromptChunks(content string) []Chunk {
	units := unitSplitter.Split(content, -1)
	counts := make([]int, len(units))
	for i, u := range units {
		counts[i] = CountWords(u)
	}

	maxWords := s.opts.MaxWordsPerChunk
	minWords := s.opts.MinSensibleWords

	texts := []string{units[0]}
	words := []int{counts[0]}

	for i := 1; i < len(units); i++ {
		last := len(texts) - 1
		current := counts[i]
		isFinal := i == len(units)-1

		next := 0
		if !isFinal {
			next = counts[i+1]
		}

		lastIsShort := words[last] < minWords
		fitsBudget := words[last]+current <= maxWords
		orphan := current < minWords && (isFinal || current+next > maxWords)

		if lastIsShort || fitsBudget || orphan {
			texts[last] += "\n" + units[i]
			words[last] += current
			continue
		}

		texts = append(texts, units[i])
		words = append(words, current)
	}

	if n := len(texts); n > 1 && words[n-1] < minWords {
		texts[n-2] += "\n" + texts[n-1]
		words[n-2] += words[n-1]
		texts = texts[:n-1]
		words = words[:n-1]
	}

	chunks := make([]Chunk, len(texts))
	for i := range texts {
		chunks[i] = Chunk{Text: texts[i], WordCount: words[i]}
	}
	return chunks
}

// Limits bounds whole-lesson size.
type Limits struct {
	MinWords int
	MaxWords int
	MaxChars int
}

// DefaultLimits returns the stock 150/4000 words and 20000 characters.
func DefaultLimits() Limits {
	return Limits{MinWords: 150, MaxWords: 4000, MaxChars: 20000}
}

// CheckLength reports content that exceeds the maximum word or character count.
// Zero limits are not enforced. The minimum is applied by the quiz assembler, not here.
func CheckLength(content string, limits Limits) error {
	if limits.MaxChars > 0 {
		if n := utf8.RuneCountInString(content); n > limits.MaxChars {
			return &LengthError{Field: "characters", Got: n, Limit: limits.MaxChars}
		}
	}
	if limits.MaxWords > 0 {
		if n := CountWords(content); n > limits.MaxWords {
			return &LengthError{Field: "words", Got: n, Limit: limits.MaxWords}
		}
	}
	return nil
}

// LengthError describes content that is too long.
type LengthError struct {
	Field string
	Got   int
	Limit int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("lesson content has too many %s: %d > %d", e.Field, e.Got, e.Limit)
}
