// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile runs the identity pipeline: resolve the group,
// resolve the user, link a pre-existing user to the group, re-own the
// application tree, and publish the resolved user name.
//
// Steps run strictly in that order, each consuming the previous step's
// result. A fatal failure stops the pipeline and is returned as a
// [*StepError] naming the step; effects of earlier steps stay in place,
// and re-running is safe because both resolvers reuse what exists.
// A membership failure is logged and recorded in [Result] unless the
// [Reconciler] is configured with [MembershipFatal].
package reconcile
