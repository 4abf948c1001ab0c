package util

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJsonEncoderDecoder(t *testing.T) {
	ed := NewJsonEncoderDecoder[sample]()
	data, err := ed.Encode(sample{Name: "ops", Count: 2})
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"ops","count":2}`, string(data))

	_, err = ed.Decode([]byte("{"))
	require.Error(t, err)
}

func TestTickWorker(t *testing.T) {
	var wg sync.WaitGroup
	var ticks atomic.Int32
	tw := NewTickWorker("test", 10*time.Millisecond, make(chan struct{}), func() { ticks.Add(1) }, &wg)
	tw.Start()
	require.True(t, tw.IsRunning())
	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond)
	tw.Stop()
	wg.Wait()
	require.False(t, tw.IsRunning())
}

func TestWorker(t *testing.T) {
	var wg sync.WaitGroup
	done := make(chan string, 2)
	w := NewWorker("test", &wg, func(task Task) error {
		s := task.(string)
		done <- s
		if s == "bad" {
			return errors.New("boom")
		}
		return nil
	}, 4)
	w.Start()
	w.Sender() <- "bad"
	w.Sender() <- "good"
	require.Equal(t, "bad", <-done)
	require.Equal(t, "good", <-done)
	w.Stop()
	wg.Wait()
}
