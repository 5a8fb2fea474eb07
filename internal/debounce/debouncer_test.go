package debounce

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	runs []string
}

func (r *recorder) run(_ context.Context, input string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, input)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

func TestDebouncerFiresOnceForLastInput(t *testing.T) {
	mock := clock.NewMock()
	rec := &recorder{}
	d := New(mock, 750*time.Millisecond, rec.run, zerolog.Nop())

	d.Trigger("b")
	mock.Add(500 * time.Millisecond)
	d.Trigger("bo")
	mock.Add(500 * time.Millisecond)
	d.Trigger("bob@")
	assert.True(t, d.Armed())
	assert.Empty(t, rec.snapshot())

	mock.Add(750 * time.Millisecond)
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"bob@"}, rec.snapshot())
	assert.False(t, d.Armed())

	mock.Add(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestDebouncerCancelReturnsToIdle(t *testing.T) {
	mock := clock.NewMock()
	rec := &recorder{}
	d := New(mock, time.Second, rec.run, zerolog.Nop())

	d.Trigger("bob@example.com")
	require.True(t, d.Armed())
	d.Cancel()
	assert.False(t, d.Armed())

	mock.Add(2 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.snapshot())

	d.Trigger("carol@example.com")
	mock.Add(time.Second)
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"carol@example.com"}, rec.snapshot())
}

func TestDebouncerCloseIsPermanent(t *testing.T) {
	mock := clock.NewMock()
	rec := &recorder{}
	d := New(mock, time.Second, rec.run, zerolog.Nop())

	d.Trigger("bob@example.com")
	d.Close()
	d.Trigger("carol@example.com")
	assert.False(t, d.Armed())

	mock.Add(3 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.snapshot())

	// Closing twice must not panic.
	d.Close()
	d.Cancel()
}

func TestDebouncerTriggerCancelsRunInFlight(t *testing.T) {
	mock := clock.NewMock()
	started := make(chan context.Context, 2)
	release := make(chan struct{})
	d := New(mock, time.Second, func(ctx context.Context, input string) {
		started <- ctx
		<-release
	}, zerolog.Nop())

	d.Trigger("bob@example.com")
	mock.Add(time.Second)

	var first context.Context
	select {
	case first = <-started:
	case <-time.After(time.Second):
		t.Fatal("expected first run to start")
	}
	assert.NoError(t, first.Err())

	d.Trigger("carol@example.com")
	assert.ErrorIs(t, first.Err(), context.Canceled)

	close(release)
	mock.Add(time.Second)
	select {
	case second := <-started:
		assert.NoError(t, second.Err())
	case <-time.After(time.Second):
		t.Fatal("expected second run to start")
	}
}

func TestDebouncerSlowRunDoesNotStallClock(t *testing.T) {
	mock := clock.NewMock()
	release := make(chan struct{})
	defer close(release)
	d := New(mock, time.Second, func(context.Context, string) { <-release }, zerolog.Nop())

	d.Trigger("bob@example.com")
	advanced := make(chan struct{})
	go func() {
		mock.Add(time.Second)
		close(advanced)
	}()

	select {
	case <-advanced:
	case <-time.After(time.Second):
		t.Fatal("clock blocked on a running action")
	}
	assert.False(t, d.Armed())
}

func TestNewAppliesDefaults(t *testing.T) {
	d := New(nil, 0, func(context.Context, string) {}, zerolog.Nop())
	assert.Equal(t, DefaultDelay, d.delay)
	assert.NotNil(t, d.clock)
}
