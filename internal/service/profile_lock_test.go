package service

import (
	"context"
	"sync"
	"testing"
)

func TestLocalProfileLockSerializesSameUser(t *testing.T) {
	lock := NewLocalProfileLock()

	const goroutines = 20
	counter := 0
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			release, err := lock.Acquire(context.Background(), "u1")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			// Sección crítica sin sincronización propia: el race detector
			// delata cualquier solapamiento.
			counter++
			release()
		}()
	}
	wg.Wait()

	if counter != goroutines {
		t.Fatalf("expected counter %d, got %d", goroutines, counter)
	}
}

func TestLocalProfileLockIndependentUsers(t *testing.T) {
	lock := NewLocalProfileLock()

	releaseA, err := lock.Acquire(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer releaseA()

	// Con alice bloqueada, bob adquiere sin esperar.
	releaseB, err := lock.Acquire(context.Background(), "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	releaseB()
}
