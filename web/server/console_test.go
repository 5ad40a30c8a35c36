package server

import (
	"testing"
	"time"
)

func TestWebLogger_ForwardsMessages(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("default-1", messageChan)

	logger.Printf("Scanlines remaining: %d\n", 3)
	logger.Printf("Done.\n")

	expected := []string{"Scanlines remaining: 3\n", "Done.\n"}
	for i, want := range expected {
		select {
		case msg := <-messageChan:
			if msg.Message != want {
				t.Errorf("Message %d: expected %q, got %q", i, want, msg.Message)
			}
			if msg.Level != "info" {
				t.Errorf("Expected level 'info', got %q", msg.Level)
			}
			if time.Since(msg.Timestamp) > time.Second {
				t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for message %d", i)
		}
	}
}

func TestWebLogger_FullChannelDoesNotBlock(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewWebLogger("default-2", messageChan)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			logger.Printf("Scanlines remaining: %d\n", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Logger blocked on a full channel")
	}
	if len(messageChan) != 1 {
		t.Errorf("Expected exactly one buffered message, got %d", len(messageChan))
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger := NewWebLogger("default-3", nil)
	logger.Printf("Test message with nil channel\n")
}
