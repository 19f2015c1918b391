package sender

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestSanitizeErrorMessage(t *testing.T) {
	err := errors.New(`telegram: Post "https://api.telegram.org/bot123456:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw/sendMessage": timeout`)
	got := sanitizeErrorMessage(err)
	if want := `telegram: Post "https://api.telegram.org/bot<redacted>/sendMessage": timeout`; got != want {
		t.Errorf("sanitized = %q, want %q", got, want)
	}

	if got := sanitizeErrorMessage(nil); got != "" {
		t.Errorf("nil error sanitized to %q", got)
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{context.DeadlineExceeded, "timeout"},
		{&tele.Error{Code: 403}, "http_4xx"},
		{&tele.Error{Code: 502}, "http_5xx"},
		{errors.New("something odd"), "unknown"},
	}
	for _, tc := range cases {
		if got := classifyError(tc.err); got != tc.want {
			t.Errorf("classifyError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestHTTPStatusFromErrorMessage(t *testing.T) {
	err := fmt.Errorf("telegram: some failure (429)")
	if got := httpStatusFromError(err); got != 429 {
		t.Errorf("status = %d, want 429", got)
	}
}

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 4, Workers: 1})
	defer d.Close()

	var ran atomic.Int32
	done := make(chan struct{})
	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		ran.Add(1)
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
	if ran.Load() != 1 {
		t.Errorf("ran = %d, want 1", ran.Load())
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 1, Workers: 1})
	defer d.Close()

	block := make(chan struct{})
	defer close(block)

	// Occupy the worker, then fill the queue.
	_ = d.Enqueue(context.Background(), "a", "", func() error { <-block; return nil })
	time.Sleep(50 * time.Millisecond)
	_ = d.Enqueue(context.Background(), "b", "", func() error { return nil })

	err := d.Enqueue(context.Background(), "c", "", func() error { return nil })
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("err = %v, want ErrQueueFull", err)
	}
}

func TestDispatcherClosed(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Close()

	err := d.Enqueue(context.Background(), "a", "", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("err = %v, want ErrQueueClosed", err)
	}
}
