package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu    sync.Mutex
	due   map[string][]int64
	calls []string
}

func (s *fakeSource) Due(_ context.Context, hhmm string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, hhmm)
	return s.due[hhmm], nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent map[int64][]string
	fail map[int64]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[int64][]string), fail: make(map[int64]bool)}
}

func (s *fakeSender) SendText(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[chatID] {
		return errors.New("send failed")
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

func (s *fakeSender) texts(chatID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[chatID]
}

func TestFireSendsToDueChats(t *testing.T) {
	source := &fakeSource{due: map[string][]int64{"07:00": {1, 2}}}
	sender := newFakeSender()
	s := NewScheduler(source, sender, "Time to practice!")

	s.fire(context.Background(), "07:00")

	assert.Equal(t, []string{"Time to practice!"}, sender.texts(1))
	assert.Equal(t, []string{"Time to practice!"}, sender.texts(2))
}

func TestFireContinuesPastSendFailure(t *testing.T) {
	source := &fakeSource{due: map[string][]int64{"07:00": {1, 2, 3}}}
	sender := newFakeSender()
	sender.fail[2] = true
	s := NewScheduler(source, sender, "reminder")

	s.fire(context.Background(), "07:00")

	assert.Len(t, sender.texts(1), 1)
	assert.Empty(t, sender.texts(2))
	assert.Len(t, sender.texts(3), 1)
}

func TestRunFiresOncePerMinute(t *testing.T) {
	source := &fakeSource{due: map[string][]int64{"12:00": {7}}}
	sender := newFakeSender()
	s := NewScheduler(source, sender, "reminder")

	// Freeze the clock inside one minute and tick fast.
	fixed := time.Date(2025, 3, 1, 12, 0, 10, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	s.tick = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return len(sender.texts(7)) == 1
	}, time.Second, 5*time.Millisecond)

	// More ticks inside the same minute must not resend.
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, sender.texts(7), 1)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestRunFiresAgainNextMinute(t *testing.T) {
	source := &fakeSource{due: map[string][]int64{
		"12:00": {7},
		"12:01": {7},
	}}
	sender := newFakeSender()
	s := NewScheduler(source, sender, "reminder")

	var mu sync.Mutex
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return fixed
	}
	s.tick = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return len(sender.texts(7)) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	fixed = fixed.Add(time.Minute)
	mu.Unlock()

	assert.Eventually(t, func() bool {
		return len(sender.texts(7)) == 2
	}, time.Second, 5*time.Millisecond)
}
