package migstate

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewDocument(t *testing.T) {
	doc := NewDocument()

	if doc.Version != SchemaVersion {
		t.Errorf("Expected version %q, got %q", SchemaVersion, doc.Version)
	}
	if doc.Stages == nil {
		t.Fatal("Expected non-nil stages map")
	}
	if len(doc.Stages) != 0 {
		t.Errorf("Expected empty stages, got %d entries", len(doc.Stages))
	}
}

func TestDocument_EncodeShape(t *testing.T) {
	data, err := NewDocument().Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	expected := `{"version":"v1","stages":{}}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	doc := NewDocument()
	doc.Stages["step1"] = StatusStarted
	doc.Stages["step2"] = StatusCompleted

	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !reflect.DeepEqual(doc, decoded) {
		t.Errorf("Round-trip mismatch: %+v != %+v", doc, decoded)
	}
}

func TestDecodeDocument_Malformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `not json`},
		{"top-level array", `["v1"]`},
		{"wrong version", `{"version":"v2","stages":{}}`},
		{"missing version", `{"stages":{}}`},
		{"stages not object", `{"version":"v1","stages":"oops"}`},
		{"invalid status", `{"version":"v1","stages":{"step1":"finished"}}`},
		{"empty status", `{"version":"v1","stages":{"step1":""}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(tc.data))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			var malformed *MalformedDocumentError
			if !errors.As(err, &malformed) {
				t.Errorf("Expected *MalformedDocumentError, got %T: %v", err, err)
			}
		})
	}
}

func TestDecodeDocument_NilStagesNormalized(t *testing.T) {
	// A document written without any stages key still decodes usable.
	doc, err := DecodeDocument([]byte(`{"version":"v1"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if doc.Stages == nil {
		t.Fatal("Expected stages map to be initialized")
	}
}

func TestStatus_Valid(t *testing.T) {
	if !StatusStarted.Valid() || !StatusCompleted.Valid() {
		t.Error("Expected started and completed to be valid")
	}
	if StatusUnset.Valid() {
		t.Error("Expected unset to be invalid for persistence")
	}
	if Status("finished").Valid() {
		t.Error("Expected arbitrary string to be invalid")
	}
}

func TestStatus_Terminal(t *testing.T) {
	if !StatusCompleted.Terminal() {
		t.Error("Expected completed to be terminal")
	}
	if StatusStarted.Terminal() || StatusUnset.Terminal() {
		t.Error("Expected started and unset to be non-terminal")
	}
}
