// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time { return f() }

// Real returns the wall clock, truncated to whole seconds. Receipts
// are compared by value, and sub-second precision only adds noise.
func Real() Clock {
	return Func(func() time.Time { return time.Now().UTC().Truncate(time.Second) })
}

// Fake returns a Clock that always reports at.
func Fake(at time.Time) Clock {
	return Func(func() time.Time { return at })
}
