// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock supplies the time stamped into reconciliation receipts.
// The reconciler takes a Clock rather than calling time.Now so a test
// can pin the timestamp with Fake.
package clock
