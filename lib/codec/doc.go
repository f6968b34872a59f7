// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration for bureau-identity's
// on-disk state.
//
// JSON is used for everything a person or script reads (--json CLI
// output, JSONC configuration). CBOR is used for the reconciliation
// receipt, which only this binary reads back. The encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items, so re-running an
// unchanged reconciliation produces a byte-identical receipt apart
// from its timestamp.
//
// Time values encode as RFC 3339 text with nanoseconds so receipts stay
// readable through cbor diagnostic tools.
package codec
