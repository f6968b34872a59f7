// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	encoder = mustEncMode()
	decoder = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	options := cbor.CoreDetEncOptions()
	options.Time = cbor.TimeRFC3339Nano
	mode, err := options.EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: building CBOR encoder: %v", err))
	}
	return mode
}

// mustDecMode returns a decoder that tolerates fields added by newer
// writers but rejects duplicate keys and anything far larger than a
// receipt.
func mustDecMode() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels:  16,
		MaxMapPairs:      256,
		MaxArrayElements: 1024,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: building CBOR decoder: %v", err))
	}
	return mode
}

// Marshal encodes v with Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encoder.Marshal(v)
}

// Unmarshal decodes data into v. Trailing bytes after the first item
// are an error.
func Unmarshal(data []byte, v any) error {
	return decoder.Unmarshal(data, v)
}

// Diagnose renders data in CBOR diagnostic notation (RFC 8949 §8), for
// logging a receipt that does not decode.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
