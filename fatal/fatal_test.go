package fatal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dispatchkit/dispatchkit/fault"
)

func TestExit_RunsHooksLIFO(t *testing.T) {
	var order []string
	var code int

	h := New(Options{ExitFunc: func(c int) { code = c }})
	h.OnShutdown("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	h.OnShutdown("second", func(context.Context) error {
		order = append(order, "second")
		return nil
	})

	h.Exit(fault.New("broker-lost", "broker connection gone"))

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("hook order: got %v, want [second first]", order)
	}
	if code != DefaultCode {
		t.Errorf("exit code: got %d, want %d", code, DefaultCode)
	}
}

func TestExit_CustomCode(t *testing.T) {
	var code int
	h := New(Options{Code: 7, ExitFunc: func(c int) { code = c }})
	h.Exit(errors.New("boom"))
	if code != 7 {
		t.Errorf("exit code: got %d, want 7", code)
	}
}

func TestExit_OnlyOnce(t *testing.T) {
	runs := 0
	exits := 0

	h := New(Options{ExitFunc: func(int) { exits++ }})
	h.OnShutdown("count", func(context.Context) error {
		runs++
		return nil
	})

	h.Exit(errors.New("first"))
	h.Exit(errors.New("second"))

	if runs != 1 {
		t.Errorf("hook runs: got %d, want 1", runs)
	}
	if exits != 1 {
		t.Errorf("exit calls: got %d, want 1", exits)
	}
}

func TestExit_HookErrorDoesNotStopSequence(t *testing.T) {
	var order []string
	h := New(Options{ExitFunc: func(int) {}})
	h.OnShutdown("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	h.OnShutdown("failing", func(context.Context) error {
		order = append(order, "failing")
		return errors.New("flush failed")
	})

	h.Exit(errors.New("boom"))

	if len(order) != 2 {
		t.Errorf("hooks run: got %v, want both despite the failure", order)
	}
}

func TestExit_DeadlineAbandonsHungHook(t *testing.T) {
	exited := make(chan int, 1)
	ranLast := false

	h := New(Options{
		Timeout:  50 * time.Millisecond,
		ExitFunc: func(c int) { exited <- c },
	})
	h.OnShutdown("never-reached", func(context.Context) error {
		ranLast = true
		return nil
	})
	h.OnShutdown("hung", func(ctx context.Context) error {
		<-ctx.Done() // simulate a hook that only stops when abandoned
		time.Sleep(time.Second)
		return nil
	})

	done := make(chan struct{})
	go func() {
		h.Exit(errors.New("boom"))
		close(done)
	}()

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("Exit did not terminate after the shutdown deadline")
	}
	<-done
	if ranLast {
		t.Error("hook after the deadline should have been abandoned")
	}
}
