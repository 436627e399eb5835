package connectivity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_EmitsOnTransitionsOnly(t *testing.T) {
	m := NewMonitor(false, nil)
	ch, cancel := m.Subscribe()
	defer cancel()

	assert.False(t, m.Set(false))
	assert.Empty(t, ch)

	assert.True(t, m.Set(true))
	require.Len(t, ch, 1)
	assert.True(t, <-ch)
	assert.True(t, m.Online())

	assert.False(t, m.Set(true))
	assert.Empty(t, ch)
}

func TestMonitor_SlowReaderSeesLatest(t *testing.T) {
	m := NewMonitor(false, nil)
	ch, cancel := m.Subscribe()
	defer cancel()

	m.Set(true)
	m.Set(false)
	m.Set(true)
	m.Set(false)

	require.Len(t, ch, 1)
	assert.False(t, <-ch)
}

func TestMonitor_CancelClosesAndDetaches(t *testing.T) {
	m := NewMonitor(true, nil)
	ch1, cancel1 := m.Subscribe()
	ch2, cancel2 := m.Subscribe()
	defer cancel2()

	cancel1()
	cancel1()

	_, open := <-ch1
	assert.False(t, open)

	m.Set(false)
	assert.False(t, <-ch2)
}

func TestMonitor_ConcurrentSetAndSubscribe(t *testing.T) {
	m := NewMonitor(false, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Set((i+j)%2 == 0)
			}
		}(i)
		go func() {
			defer wg.Done()
			ch, cancel := m.Subscribe()
			for j := 0; j < 10; j++ {
				select {
				case <-ch:
				default:
				}
			}
			cancel()
		}()
	}
	wg.Wait()
}
