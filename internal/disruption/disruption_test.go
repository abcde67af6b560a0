package disruption

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApplier struct {
	mu       sync.Mutex
	seq      int
	applied  []Event
	reverted []Token
	fail     error
}

func (f *fakeApplier) ApplyDisruption(ev Event) (Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	f.seq++
	f.applied = append(f.applied, ev)
	return Token(fmt.Sprintf("tok-%d", f.seq)), nil
}

func (f *fakeApplier) RevertDisruption(tok Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reverted = append(f.reverted, tok)
}

func (f *fakeApplier) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied), len(f.reverted)
}

func TestPickRespectsWeights(t *testing.T) {
	table := Table{
		{Event: Event{Kind: Freeze, Target: "A1"}, Weight: 0},
		{Event: Event{Kind: Delay, Target: "LGW"}, Weight: 5},
	}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		ev, ok := table.Pick(r)
		require.True(t, ok)
		assert.Equal(t, Delay, ev.Kind)
	}

	_, ok := Table{}.Pick(r)
	assert.False(t, ok)
}

func TestPickCoversDefaultTable(t *testing.T) {
	table := DefaultTable(2 * time.Minute)
	r := rand.New(rand.NewSource(7))
	seen := make(map[Kind]bool)
	for i := 0; i < 500; i++ {
		ev, _ := table.Pick(r)
		seen[ev.Kind] = true
	}
	assert.Len(t, seen, 4)
}

func TestApplyRevertsAfterDuration(t *testing.T) {
	f := &fakeApplier{}
	s := NewScheduler(f, nil, Config{}, nil, nil)

	tok, err := s.Apply(Event{Kind: Freeze, Target: "A1", Duration: 20 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, Token("tok-1"), tok)
	assert.Equal(t, 1, s.Pending())

	require.Eventually(t, func() bool {
		_, reverted := f.counts()
		return reverted == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, s.Pending())
}

func TestPermanentEventIsNotReverted(t *testing.T) {
	f := &fakeApplier{}
	s := NewScheduler(f, nil, Config{}, nil, nil)

	_, err := s.Apply(Event{Kind: CrewIllness, Target: "A2"})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Pending())
}

func TestApplyError(t *testing.T) {
	boom := errors.New("boom")
	s := NewScheduler(&fakeApplier{fail: boom}, nil, Config{}, nil, nil)
	_, err := s.Apply(Event{Kind: Delay, Target: "LGW", Duration: time.Minute})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Pending())
}

func TestStopRevertsOutstandingEffects(t *testing.T) {
	f := &fakeApplier{}
	s := NewScheduler(f, nil, Config{}, nil, nil)
	_, err := s.Apply(Event{Kind: Freeze, Target: "A1", Duration: time.Hour})
	require.NoError(t, err)
	_, err = s.Apply(Event{Kind: CharterBonus, Target: "A3", Duration: time.Hour})
	require.NoError(t, err)

	s.Stop()
	applied, reverted := f.counts()
	assert.Equal(t, 2, applied)
	assert.Equal(t, 2, reverted)
	assert.Equal(t, 0, s.Pending())
}

func TestSchedulerFiresWhileGateOpen(t *testing.T) {
	f := &fakeApplier{}
	table := Table{{Event: Event{Kind: Delay, Target: "LGW", Duration: time.Hour}, Weight: 1}}
	s := NewScheduler(f, table, Config{Interval: 5 * time.Millisecond}, nil, rand.New(rand.NewSource(3)))

	var mu sync.Mutex
	open := false
	s.SetGate(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return open
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	time.Sleep(30 * time.Millisecond)
	applied, _ := f.counts()
	assert.Equal(t, 0, applied, "closed gate must not fire")

	mu.Lock()
	open = true
	mu.Unlock()
	require.Eventually(t, func() bool {
		applied, _ := f.counts()
		return applied >= 2
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	applied, reverted := f.counts()
	assert.Equal(t, applied, reverted)
}
