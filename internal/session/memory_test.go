package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/codemasterbot/internal/models"
)

func questions(names ...string) []models.Question {
	qs := make([]models.Question, len(names))
	for i, n := range names {
		qs[i] = models.Question{ID: int64(i + 1), Name: n}
	}
	return qs
}

func TestPopNextDrainsQueue(t *testing.T) {
	q := &Quiz{Remaining: questions("len", "cap", "append")}

	first := q.PopNext()
	require.NotNil(t, first)
	assert.Equal(t, "len", first.Name)
	assert.Len(t, q.Remaining, 2)

	assert.Equal(t, "cap", q.PopNext().Name)
	assert.Equal(t, "append", q.PopNext().Name)

	assert.Nil(t, q.PopNext())
	assert.Nil(t, q.Current)
}

func TestPopNextNeverKeepsCurrentInRemaining(t *testing.T) {
	q := &Quiz{Remaining: questions("a", "b")}
	cur := q.PopNext()
	for _, rem := range q.Remaining {
		assert.NotEqual(t, cur.ID, rem.ID)
	}
}

func TestStartQuizReplacesPrevious(t *testing.T) {
	m := NewMemoryManager()

	m.StartQuiz(1, &Quiz{Correct: 5})
	m.StartQuiz(1, &Quiz{Correct: 0, Difficulty: models.DifficultyHard})

	got := m.Quiz(1)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Correct)
	assert.Equal(t, models.DifficultyHard, got.Difficulty)
}

func TestQuizIsPerUser(t *testing.T) {
	m := NewMemoryManager()
	m.StartQuiz(1, &Quiz{})

	assert.NotNil(t, m.Quiz(1))
	assert.Nil(t, m.Quiz(2))
}

func TestClearQuizKeepsOtherState(t *testing.T) {
	m := NewMemoryManager()
	m.StartQuiz(1, &Quiz{})
	m.SetAwaitingNotificationTime(1, true)

	m.ClearQuiz(1)

	assert.Nil(t, m.Quiz(1))
	assert.True(t, m.AwaitingNotificationTime(1))
}

func TestClearRemovesEverything(t *testing.T) {
	m := NewMemoryManager()
	m.StartQuiz(1, &Quiz{})
	m.SetAwaitingNotificationTime(1, true)

	m.Clear(1)

	assert.Nil(t, m.Quiz(1))
	assert.False(t, m.AwaitingNotificationTime(1))
}

func TestConcurrentAccess(t *testing.T) {
	m := NewMemoryManager()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.StartQuiz(id, &Quiz{})
			m.SetAwaitingNotificationTime(id, true)
			_ = m.Quiz(id)
			_ = m.AwaitingNotificationTime(id)
			m.Clear(id)
		}(int64(i % 4))
	}
	wg.Wait()
}
