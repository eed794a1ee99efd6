package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/opencode-reminder/pkg/notification"
	"github.com/Veraticus/opencode-reminder/pkg/opencode"
)

func TestMockNotifier(t *testing.T) {
	t.Run("successful send", func(t *testing.T) {
		mock := NewMockNotifier()
		n := notification.Notification{Title: "Test"}

		err := mock.Send(n)
		if err != nil {
			t.Errorf("Send() error = %v, want nil", err)
		}

		if len(mock.GetNotifications()) != 1 {
			t.Errorf("GetNotifications() returned %d, want 1", len(mock.GetNotifications()))
		}
		if len(mock.GetAttempts()) != 1 {
			t.Errorf("GetAttempts() returned %d, want 1", len(mock.GetAttempts()))
		}
	})

	t.Run("send with error", func(t *testing.T) {
		mock := NewMockNotifier()
		mockErr := errors.New("test error")
		mock.SetError(mockErr)

		err := mock.Send(notification.Notification{Title: "Test"})
		if err != mockErr {
			t.Errorf("Send() error = %v, want %v", err, mockErr)
		}

		// Should have no successful notifications
		if len(mock.GetNotifications()) != 0 {
			t.Errorf("GetNotifications() returned %d, want 0", len(mock.GetNotifications()))
		}

		// But should have an attempt
		if len(mock.GetAttempts()) != 1 {
			t.Errorf("GetAttempts() returned %d, want 1", len(mock.GetAttempts()))
		}
	})

	t.Run("wait for attempts", func(t *testing.T) {
		mock := NewMockNotifier()
		go func() {
			_ = mock.Send(notification.Notification{Title: "one"})
			_ = mock.Send(notification.Notification{Title: "two"})
		}()

		if !mock.WaitForAttempts(2, time.Second) {
			t.Fatal("WaitForAttempts() timed out")
		}
		if mock.WaitForAttempts(3, 20*time.Millisecond) {
			t.Error("WaitForAttempts(3) = true, want false")
		}
	})
}

func TestMockRateLimiter(t *testing.T) {
	mock := NewMockRateLimiter(true)

	if !mock.Allow() {
		t.Error("Allow() = false, want true")
	}

	mock.SetAllowResult(false)
	if mock.Allow() {
		t.Error("Allow() = true, want false")
	}

	if mock.GetAllowCount() != 2 {
		t.Errorf("GetAllowCount() = %d, want 2", mock.GetAllowCount())
	}
}

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)

	if !clock.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", clock.Now(), start)
	}

	clock.Advance(1500 * time.Millisecond)
	if got := clock.Now().Sub(start); got != 1500*time.Millisecond {
		t.Errorf("Advance moved clock by %v, want 1.5s", got)
	}

	clock.Set(start)
	if !clock.Now().Equal(start) {
		t.Error("Set() did not move the clock")
	}
}

func TestMockTUI(t *testing.T) {
	tui := NewMockTUI()
	ctx := context.Background()

	_ = tui.ShowToast(ctx, opencode.Toast{Message: "hello"})
	_ = tui.AppendPrompt(ctx, "world")

	if len(tui.GetToasts()) != 1 || tui.GetToasts()[0].Message != "hello" {
		t.Errorf("unexpected toasts %+v", tui.GetToasts())
	}
	if len(tui.GetAppends()) != 1 || tui.GetAppends()[0] != "world" {
		t.Errorf("unexpected appends %+v", tui.GetAppends())
	}

	tui.SetError(errors.New("tui gone"))
	if err := tui.AppendPrompt(ctx, "x"); err == nil {
		t.Error("expected error after SetError")
	}
}
