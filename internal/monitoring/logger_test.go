package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op that must not call the previous logger
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestComponentPrefixesMessages(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	logf := Component("zones")
	logf("skipping lane %s", "1104")

	if got != "[zones] skipping lane 1104" {
		t.Errorf("got %q, want %q", got, "[zones] skipping lane 1104")
	}
}

func TestComponentFollowsLoggerChanges(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	logf := Component("tagging")

	count := 0
	SetLogger(func(string, ...interface{}) { count++ })
	logf("one")
	SetLogger(nil)
	logf("two")

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()

	Logf("test message: %s", "value")
}
