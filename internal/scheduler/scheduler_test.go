package scheduler

import (
	"testing"
	"time"
)

func TestDisabledWhenIntervalZero(t *testing.T) {
	s := New(0, func() int { return 0 })
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.IsRunning() {
		t.Fatalf("scheduler should stay idle with zero interval")
	}
}

func TestStartStop(t *testing.T) {
	s := New(time.Hour, func() int { return 0 })
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.IsRunning() {
		t.Fatalf("scheduler not running after Start")
	}
	s.Stop()
}
