package idgen

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnowflakeRejectsBadWorkerID(t *testing.T) {
	_, err := NewSnowflake(-1)
	assert.Error(t, err)

	_, err = NewSnowflake(maxWorkerID + 1)
	assert.Error(t, err)

	s, err := NewSnowflake(maxWorkerID)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestGenerateIsStrictlyIncreasing(t *testing.T) {
	s, err := NewSnowflake(1)
	require.NoError(t, err)

	prev := s.Generate()
	for i := 0; i < 10000; i++ {
		next := s.Generate()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestGenerateSurvivesClockStepBack(t *testing.T) {
	s, err := NewSnowflake(3)
	require.NoError(t, err)

	clock := int64(1735689600000)
	s.now = func() int64 { return clock }

	first := s.Generate()
	clock -= 5000
	second := s.Generate()
	assert.Greater(t, second, first)

	clock += 10000
	third := s.Generate()
	assert.Greater(t, third, second)
}

func TestMustNewSnowflake(t *testing.T) {
	assert.NotNil(t, MustNewSnowflake(1))
	assert.Panics(t, func() { MustNewSnowflake(maxWorkerID + 1) })
}

func TestGenerateExhaustedSequenceDoesNotWaitForClock(t *testing.T) {
	s, err := NewSnowflake(2)
	require.NoError(t, err)

	// 时钟停在回拨后的位置，永远追不上已发出的时间戳
	clock := int64(1735689600000)
	s.now = func() int64 { return clock }
	prev := s.Generate()
	clock -= 60000

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3*(maxSequence+1); i++ {
			next := s.Generate()
			if next <= prev {
				t.Errorf("id %d not greater than %d", next, prev)
				return
			}
			prev = next
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Generate blocked waiting for the clock")
	}
}

func TestAccountNumberUniqueUnderConcurrency(t *testing.T) {
	s, err := NewSnowflake(7)
	require.NoError(t, err)

	const workers, perWorker = 8, 500
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				n := s.AccountNumber()
				mu.Lock()
				seen[n] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	for n := range seen {
		assert.True(t, strings.HasPrefix(n, AccountNumberPrefix))
		assert.Equal(t, strings.ToUpper(n), n)
		break
	}
}
