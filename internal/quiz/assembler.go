package quiz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gokatarajesh/lesson-quiz/internal/lesson"
	"github.com/gokatarajesh/lesson-quiz/internal/sampling"
)

// Generator turns one prompt chunk into raw model output. Implementations own
// transport concerns such as timeouts and retries.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req GenerateRequest) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}

// Policy holds the numeric limits of quiz assembly.
type Policy struct {
	LowestMaxQuestions   int
	HighestMaxQuestions  int
	MaxQuestionsPerChunk int
	Limits               lesson.Limits
	Segmenter            lesson.SegmenterOptions
	// MaxConcurrentCalls caps in-flight generation calls; 0 means no cap.
	MaxConcurrentCalls int
}

// DefaultPolicy returns the stock limits: 3..10 questions, at most 3 per chunk,
// 150..4000 words and 20000 characters of content, 100/40 word chunks.
func DefaultPolicy() Policy {
	return Policy{
		LowestMaxQuestions:   3,
		HighestMaxQuestions:  10,
		MaxQuestionsPerChunk: 3,
		Limits:               lesson.DefaultLimits(),
		Segmenter:            lesson.DefaultSegmenterOptions(),
	}
}

// Budget is how many chunks to prompt and how many questions to ask of each.
type Budget struct {
	QuestionsPerChunk int
	ChunksToUse       int
}

// ComputeBudget spreads maxQuestions over chunkCount chunks. With at least as
// many questions as chunks every chunk is used and gets floor(max/chunks)
// questions, capped at perChunkCeiling. Otherwise maxQuestions chunks are used
// with one question each.
func ComputeBudget(maxQuestions, chunkCount, perChunkCeiling int) Budget {
	if chunkCount < 1 {
		return Budget{}
	}
	if maxQuestions >= chunkCount {
		return Budget{
			QuestionsPerChunk: max(1, min(maxQuestions/chunkCount, perChunkCeiling)),
			ChunksToUse:       chunkCount,
		}
	}
	return Budget{QuestionsPerChunk: 1, ChunksToUse: maxQuestions}
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithMetrics records generation outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(a *Assembler) { a.metrics = m }
}

// WithIntn replaces the random source used for window selection.
func WithIntn(intn func(n int) int) Option {
	return func(a *Assembler) { a.intn = intn }
}

// Assembler turns lesson content into a bounded, validated quiz.
type Assembler struct {
	policy    Policy
	segmenter *lesson.Segmenter
	generator Generator
	logger    zerolog.Logger
	metrics   *Metrics
	intn      func(n int) int
}

// NewAssembler wires an assembler around a generator.
func NewAssembler(policy Policy, generator Generator, logger zerolog.Logger, opts ...Option) *Assembler {
	a := &Assembler{
		policy:    policy,
		segmenter: lesson.NewSegmenter(policy.Segmenter),
		generator: generator,
		logger:    logger.With().Str("component", "quiz_assembler").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy returns the limits the assembler enforces.
func (a *Assembler) Policy() Policy {
	return a.policy
}

// Assemble segments content, prompts the generator once per selected chunk,
// keeps the valid responses and trims the merged questions to maxQuestions.
//
// Failed or invalid generations are logged and dropped. The returned error
// wraps ErrInvalidParameter, ErrInsufficientContent or ErrAllSourcesInvalid.
func (a *Assembler) Assemble(ctx context.Context, content string, maxQuestions int) (FinalQuiz, error) {
	if maxQuestions < a.policy.LowestMaxQuestions || maxQuestions > a.policy.HighestMaxQuestions {
		return FinalQuiz{}, fmt.Errorf("%w: max questions count must be between %d and %d, got %d",
			ErrInvalidParameter, a.policy.LowestMaxQuestions, a.policy.HighestMaxQuestions, maxQuestions)
	}
	if err := lesson.CheckLength(content, a.policy.Limits); err != nil {
		return FinalQuiz{}, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}

	chunks := a.segmenter.ToPromptChunks(content)
	// Only a lone chunk is held to the lesson minimum; with two or more chunks
	// the check is skipped whatever their size.
	if len(chunks) == 1 && chunks[0].WordCount < a.policy.Limits.MinWords {
		return FinalQuiz{}, fmt.Errorf("%w: %d words, need %d",
			ErrInsufficientContent, chunks[0].WordCount, a.policy.Limits.MinWords)
	}

	budget := ComputeBudget(maxQuestions, len(chunks), a.policy.MaxQuestionsPerChunk)
	selected := chunks
	if len(chunks) > budget.ChunksToUse {
		var err error
		selected, err = sampling.TakeRandomSequential(chunks, budget.ChunksToUse, a.intn)
		if err != nil {
			return FinalQuiz{}, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
		}
	}

	a.logger.Debug().
		Int("chunks", len(chunks)).
		Int("chunks_used", len(selected)).
		Int("questions_per_chunk", budget.QuestionsPerChunk).
		Int("max_questions", maxQuestions).
		Msg("quiz generation planned")

	results := a.generateAll(ctx, selected, budget.QuestionsPerChunk)

	var questions []Question
	for _, res := range results {
		questions = append(questions, res.QuizDetails...)
	}

	if len(questions) == 0 {
		a.logger.Warn().Int("chunks_used", len(selected)).Msg("no generation result could be combined into a valid quiz")
		return FinalQuiz{}, ErrAllSourcesInvalid
	}
	if len(questions) > maxQuestions {
		trimmed, err := sampling.TakeRandomSequential(questions, maxQuestions, a.intn)
		if err != nil {
			return FinalQuiz{}, fmt.Errorf("trim questions: %w", err)
		}
		questions = trimmed
	}

	a.metrics.observeAssembled(len(questions))
	quiz := FinalQuiz{ID: uuid.NewString(), QuizDetails: questions}
	a.logger.Info().
		Str("quiz_id", quiz.ID).
		Int("questions", len(questions)).
		Msg("quiz assembled")
	return quiz, nil
}

// generateAll prompts every chunk concurrently and waits for all of them. The
// returned slice is indexed like chunks; rejected chunks leave an empty entry.
func (a *Assembler) generateAll(ctx context.Context, chunks []lesson.Chunk, questionsPerChunk int) []Details {
	results := make([]Details, len(chunks))

	var g errgroup.Group
	if a.policy.MaxConcurrentCalls > 0 {
		g.SetLimit(a.policy.MaxConcurrentCalls)
	}
	for i, chunk := range chunks {
		g.Go(func() error {
			details, err := a.generateChunk(ctx, i, chunk, questionsPerChunk)
			if err == nil {
				results[i] = details
			}
			// Never fail the group: one bad chunk must not cancel the others.
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (a *Assembler) generateChunk(ctx context.Context, index int, chunk lesson.Chunk, count int) (Details, error) {
	raw, err := a.generator.Generate(ctx, GenerateRequest{Chunk: chunk.Text, QuestionsCount: count})
	if err != nil {
		a.metrics.observeCall(OutcomeFailed)
		a.metrics.observeRejection(RejectGenerationFailed)
		a.logger.Warn().
			Err(err).
			Int("chunk_index", index).
			Int("chunk_words", chunk.WordCount).
			Msg("generation call failed")
		return Details{}, &ResponseError{Reason: RejectGenerationFailed, Err: err}
	}

	details, err := ParseResponse(raw)
	if err != nil {
		reason := ReasonOf(err)
		a.metrics.observeCall(OutcomeRejected)
		a.metrics.observeRejection(reason)
		a.logger.Warn().
			Err(err).
			Str("reason", string(reason)).
			Int("chunk_index", index).
			Str("raw", raw).
			Msg("model response rejected")
		return Details{}, err
	}

	a.metrics.observeCall(OutcomeAccepted)
	return details, nil
}
