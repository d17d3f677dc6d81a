//go:build linux

package ifreq

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestLoopbackIsUp(t *testing.T) {
	s, err := Open()
	if err != nil {
		t.Skipf("control socket unavailable: %v", err)
	}
	defer s.Close()

	if _, err := s.Index("lo"); err != nil {
		t.Fatalf("lo index: %v", err)
	}
	flags, err := s.Flags("lo")
	if err != nil {
		t.Fatalf("lo flags: %v", err)
	}
	if flags&unix.IFF_LOOPBACK == 0 {
		t.Fatalf("expected IFF_LOOPBACK in %#x", flags)
	}
}

func TestMissingInterface(t *testing.T) {
	s, err := Open()
	if err != nil {
		t.Skipf("control socket unavailable: %v", err)
	}
	defer s.Close()

	if _, err := s.Index("nonexistent0"); !IsNoDevice(err) {
		t.Fatalf("expected ENODEV, got %v", err)
	}
	if _, err := s.Flags("nonexistent0"); !IsNoDevice(err) {
		t.Fatalf("expected ENODEV, got %v", err)
	}
}

func TestCloseTwice(t *testing.T) {
	s, err := Open()
	if err != nil {
		t.Skipf("control socket unavailable: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close must be a no-op, got %v", err)
	}
}
