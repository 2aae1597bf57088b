package util

import (
	"context"
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	// 10 tokens per second, burst of 2
	l := NewLimiter(10, 2)

	if !l.Allow(1) {
		t.Error("expected first token to be allowed")
	}
	if !l.Allow(1) {
		t.Error("expected second token to be allowed (burst)")
	}
	if l.Allow(1) {
		t.Error("expected third token to be rejected (burst exhausted)")
	}

	time.Sleep(150 * time.Millisecond)
	if !l.Allow(1) {
		t.Error("expected token to be refilled after wait")
	}
}

func TestNewPerSecond(t *testing.T) {
	if NewPerSecond(0) != nil {
		t.Fatal("expected nil limiter for zero rate")
	}
	if NewPerSecond(-3) != nil {
		t.Fatal("expected nil limiter for negative rate")
	}

	l := NewPerSecond(5)
	for i := 0; i < 5; i++ {
		if !l.Allow(1) {
			t.Fatalf("expected token %d of the burst to be allowed", i+1)
		}
	}
	if l.Allow(1) {
		t.Error("expected burst to be exhausted")
	}
}

func TestLimiter_NilNeverBlocks(t *testing.T) {
	var l *Limiter
	if !l.Allow(100) {
		t.Error("nil limiter should allow everything")
	}
	if err := l.Wait(context.Background(), 100); err != nil {
		t.Fatalf("nil limiter Wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx, 1); err == nil {
		t.Error("nil limiter should still report cancellation")
	}
}

func TestLimiter_Wait(t *testing.T) {
	l := NewLimiter(100, 1)
	l.Allow(1) // consume burst

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := l.Wait(ctx, 1)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("Wait returned too early")
	}
}
