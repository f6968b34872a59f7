// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type sampleRecord struct {
	Name    string    `cbor:"name"`
	ID      uint32    `cbor:"id"`
	Created bool      `cbor:"created"`
	At      time.Time `cbor:"at"`
}

func TestMarshalDeterministic(t *testing.T) {
	record := sampleRecord{Name: "appuser", ID: 99, Created: true, At: time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)}

	first, err := Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Marshal produced different bytes for the same value")
	}

	var decoded sampleRecord
	if err := Unmarshal(first, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.At.Equal(record.At) || decoded.Name != record.Name || decoded.ID != record.ID {
		t.Errorf("decoded = %+v, want %+v", decoded, record)
	}
}

func TestTimeEncodesAsText(t *testing.T) {
	data, err := Marshal(sampleRecord{At: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnostic, `"2026-01-02T03:04:05Z"`) {
		t.Errorf("Diagnose() = %s, want RFC 3339 text time", diagnostic)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	type newer struct {
		Name  string `cbor:"name"`
		Extra string `cbor:"extra"`
	}
	data, err := Marshal(newer{Name: "appuser", Extra: "future"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal with unknown field: %v", err)
	}
	if decoded.Name != "appuser" {
		t.Errorf("decoded name = %q, want appuser", decoded.Name)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var decoded sampleRecord
	if err := Unmarshal([]byte("appuser\n"), &decoded); err == nil {
		t.Error("Unmarshal should reject non-CBOR data")
	}
}
