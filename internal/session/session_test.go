package session

import (
	"sync"
	"testing"
)

func TestStaticToken(t *testing.T) {
	if got := Static("tok-1").Token(); got != "tok-1" {
		t.Fatalf("unexpected token %q", got)
	}
	if got := Static("").Token(); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}

func TestTokenSourceSwap(t *testing.T) {
	src := NewTokenSource("first")
	if got := src.Token(); got != "first" {
		t.Fatalf("unexpected token %q", got)
	}
	src.Set("  second  ")
	if got := src.Token(); got != "second" {
		t.Fatalf("expected trimmed token, got %q", got)
	}
	src.Clear()
	if got := src.Token(); got != "" {
		t.Fatalf("expected cleared token, got %q", got)
	}
}

func TestTokenSourceConcurrentAccess(t *testing.T) {
	src := NewTokenSource("seed")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			src.Set("swapped")
		}()
		go func() {
			defer wg.Done()
			_ = src.Token()
		}()
	}
	wg.Wait()
	if got := src.Token(); got != "swapped" {
		t.Fatalf("unexpected final token %q", got)
	}
}
