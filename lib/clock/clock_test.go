// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeIsStopped(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := Fake(at)
	for range 3 {
		if got := fake.Now(); !got.Equal(at) {
			t.Fatalf("Now() = %v, want %v", got, at)
		}
	}
}

func TestRealIsCurrent(t *testing.T) {
	before := time.Now().Truncate(time.Second)
	now := Real().Now()
	if now.Before(before) {
		t.Errorf("Real().Now() = %v, earlier than %v", now, before)
	}
	if now.Location() != time.UTC {
		t.Errorf("Real().Now() location = %v, want UTC", now.Location())
	}
	if now.Nanosecond() != 0 {
		t.Errorf("Real().Now() = %v, want whole seconds", now)
	}
}
