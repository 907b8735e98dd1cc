package quiz

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/codemasterbot/internal/models"
	"github.com/m3rciful/codemasterbot/internal/session"
)

type fakeSource struct {
	byTag map[string][]models.Question
}

func (f *fakeSource) RandomByTag(_ context.Context, slug string, count int) ([]models.Question, error) {
	pool := f.byTag[slug]
	if count > len(pool) {
		count = len(pool)
	}
	out := make([]models.Question, count)
	copy(out, pool[:count])
	return out, nil
}

func (f *fakeSource) AllNamesExcept(_ context.Context, questionID int64) ([]string, error) {
	var names []string
	for _, pool := range f.byTag {
		for _, q := range pool {
			if q.ID != questionID {
				names = append(names, q.Name)
			}
		}
	}
	return names, nil
}

type sentChoices struct {
	text    string
	options []string
}

type fakeOutbox struct {
	texts    []string
	choices  []sentChoices
	stickers []string
}

func (f *fakeOutbox) SendText(_ context.Context, _ int64, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeOutbox) SendChoices(_ context.Context, _ int64, text string, options []string) error {
	f.choices = append(f.choices, sentChoices{text: text, options: options})
	return nil
}

func (f *fakeOutbox) SendSticker(_ context.Context, _ int64, fileID string) error {
	f.stickers = append(f.stickers, fileID)
	return nil
}

func questionsForTag(slug string, n int) []models.Question {
	qs := make([]models.Question, 0, n)
	for i := 1; i <= n; i++ {
		qs = append(qs, models.Question{
			ID:          int64(i),
			Name:        fmt.Sprintf("%s_fn_%d", slug, i),
			Description: fmt.Sprintf("description of %s_fn_%d", slug, i),
			Syntax:      sql.NullString{String: fmt.Sprintf("%s_fn_%d(x)", slug, i), Valid: true},
		})
	}
	return qs
}

func newTestEngine(src *fakeSource) (*Engine, session.Manager, *fakeOutbox) {
	sessions := session.NewMemoryManager()
	out := &fakeOutbox{}
	cfg := Config{
		QuestionsPerQuiz: 10,
		ChoiceCount:      3,
		GreatThreshold:   7,
		Stickers: Pools{
			Perfect: []string{"sticker-perfect"},
			Great:   []string{"sticker-great"},
			Good:    []string{"sticker-good"},
		},
	}
	eng := New(src, sessions, out, cfg, rand.New(rand.NewSource(1)))
	return eng, sessions, out
}

func TestStartDrawsUpToConfiguredCount(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{
		"func": questionsForTag("func", 12),
	}}
	eng, sessions, _ := newTestEngine(src)

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyEasy, "func"))

	qz := sessions.Quiz(1)
	require.NotNil(t, qz)
	require.NotNil(t, qz.Current)
	assert.Len(t, qz.Remaining, 9, "current question must leave the queue")

	seen := map[int64]bool{qz.Current.ID: true}
	for _, q := range qz.Remaining {
		assert.False(t, seen[q.ID], "drawn questions must be distinct")
		seen[q.ID] = true
	}
}

func TestStartWithEmptyTopicCreatesNoSession(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{}}
	eng, sessions, out := newTestEngine(src)

	err := eng.Start(context.Background(), 2, models.DifficultyEasy, "expressions")
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Nil(t, sessions.Quiz(2))
	assert.Empty(t, out.texts)
	assert.Empty(t, out.choices)
}

func TestStartOverwritesPreviousSession(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{
		"func": questionsForTag("func", 12),
	}}
	eng, sessions, _ := newTestEngine(src)

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyEasy, "func"))
	first := sessions.Quiz(1)
	first.Correct = 5

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyEasy, "func"))
	second := sessions.Quiz(1)
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.Zero(t, second.Correct)
}

func TestEasyModeOptionSet(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{
		"func": questionsForTag("func", 12),
	}}
	eng, sessions, out := newTestEngine(src)

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyEasy, "func"))
	require.Len(t, out.choices, 1)

	qz := sessions.Quiz(1)
	options := out.choices[0].options
	assert.Len(t, options, 4, "correct name plus three incorrect")
	assert.Contains(t, options, qz.Current.Name)

	unique := map[string]bool{}
	for _, o := range options {
		assert.False(t, unique[o], "options must be distinct")
		unique[o] = true
	}

	assert.Contains(t, out.choices[0].text, "Questions left: 9")
	assert.False(t, qz.AwaitingAnswer, "easy mode does not await free text")
}

func TestEasyModeDegradesWithFewOthers(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{
		"func": questionsForTag("func", 2),
	}}
	eng, _, out := newTestEngine(src)

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyEasy, "func"))
	require.Len(t, out.choices, 1)
	// Only one other question exists, so two options total.
	assert.Len(t, out.choices[0].options, 2)
}

func TestHardModeAwaitsFreeText(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{
		"func": questionsForTag("func", 12),
	}}
	eng, sessions, out := newTestEngine(src)

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyHard, "func"))
	assert.Empty(t, out.choices, "hard mode sends no buttons")
	require.Len(t, out.texts, 1)
	assert.Contains(t, out.texts[0], "Type the function name")
	assert.True(t, sessions.Quiz(1).AwaitingAnswer)
	assert.True(t, eng.AwaitingAnswer(1))
}

func TestSubmitIsCaseSensitive(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{
		"func": questionsForTag("func", 12),
	}}
	eng, sessions, out := newTestEngine(src)

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyHard, "func"))
	name := sessions.Quiz(1).Current.Name

	require.NoError(t, eng.Submit(context.Background(), 1, strings.ToUpper(name)))

	qz := sessions.Quiz(1)
	require.NotNil(t, qz)
	assert.Zero(t, qz.Correct, "different case must be judged incorrect")
	assert.True(t, qz.AwaitingAnswer, "the next hard question awaits text again")

	reveal := out.texts[1]
	assert.Contains(t, reveal, "❌")
	assert.Contains(t, reveal, "Your answer: "+strings.ToUpper(name))
	assert.Contains(t, reveal, "Correct answer: "+name)
}

func TestSubmitAdvancesThroughQueue(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{
		"func": questionsForTag("func", 12),
	}}
	eng, sessions, out := newTestEngine(src)

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyEasy, "func"))

	first := sessions.Quiz(1).Current
	require.NoError(t, eng.Submit(context.Background(), 1, first.Name))

	qz := sessions.Quiz(1)
	require.NotNil(t, qz)
	assert.Equal(t, 1, qz.Correct)
	assert.NotEqual(t, first.ID, qz.Current.ID, "advancing replaces the current question")
	assert.Len(t, qz.Remaining, 8)
	assert.Len(t, out.choices, 2, "next question presented")
}

func TestPerfectRunReportsFullScoreAndPerfectSticker(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{
		"func": questionsForTag("func", 12),
	}}
	eng, sessions, out := newTestEngine(src)

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyEasy, "func"))
	for i := 0; i < 10; i++ {
		qz := sessions.Quiz(1)
		require.NotNil(t, qz, "session alive until the last answer")
		require.NoError(t, eng.Submit(context.Background(), 1, qz.Current.Name))
	}

	assert.Nil(t, sessions.Quiz(1), "finishing clears the session")
	require.NotEmpty(t, out.texts)
	assert.Contains(t, out.texts[len(out.texts)-1], "10 out of 10")
	require.Len(t, out.stickers, 1)
	assert.Equal(t, "sticker-perfect", out.stickers[0])
}

func TestGoodTierAndFixedDenominator(t *testing.T) {
	// Only two questions exist; the score denominator must stay at the
	// configured draw count.
	src := &fakeSource{byTag: map[string][]models.Question{
		"func": questionsForTag("func", 2),
	}}
	eng, sessions, out := newTestEngine(src)

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyEasy, "func"))
	for sessions.Quiz(1) != nil {
		require.NoError(t, eng.Submit(context.Background(), 1, sessions.Quiz(1).Current.Name))
	}

	assert.Contains(t, out.texts[len(out.texts)-1], "2 out of 10")
	require.Len(t, out.stickers, 1)
	assert.Equal(t, "sticker-good", out.stickers[0])
}

func TestGreatTier(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{
		"func": questionsForTag("func", 12),
	}}
	eng, sessions, out := newTestEngine(src)

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyEasy, "func"))
	for i := 0; i < 10; i++ {
		qz := sessions.Quiz(1)
		answer := qz.Current.Name
		if i >= 8 {
			answer = "definitely wrong"
		}
		require.NoError(t, eng.Submit(context.Background(), 1, answer))
	}

	assert.Contains(t, out.texts[len(out.texts)-1], "8 out of 10")
	require.Len(t, out.stickers, 1)
	assert.Equal(t, "sticker-great", out.stickers[0])
}

func TestCancelClearsWithoutScore(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{
		"func": questionsForTag("func", 12),
	}}
	eng, sessions, out := newTestEngine(src)

	require.NoError(t, eng.Start(context.Background(), 1, models.DifficultyEasy, "func"))
	for i := 0; i < 3; i++ {
		require.NoError(t, eng.Submit(context.Background(), 1, sessions.Quiz(1).Current.Name))
	}

	require.NoError(t, eng.Cancel(context.Background(), 1))

	assert.Nil(t, sessions.Quiz(1))
	assert.Empty(t, out.stickers)
	for _, text := range out.texts {
		assert.NotContains(t, text, "out of", "no partial score on cancel")
	}
	assert.Contains(t, out.texts[len(out.texts)-1], "Quiz ended")
}

func TestSubmitWithoutActiveQuestion(t *testing.T) {
	src := &fakeSource{byTag: map[string][]models.Question{}}
	eng, _, out := newTestEngine(src)

	err := eng.Submit(context.Background(), 99, "anything")
	assert.ErrorIs(t, err, ErrNoActiveQuestion)
	assert.Empty(t, out.texts)
}
