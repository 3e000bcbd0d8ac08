package storage

import (
	"errors"
	"testing"
)

func TestRunCodecRoundTrip(t *testing.T) {
	input := testRun("run-1", "2026-08-23T10:00:00Z")
	data, err := EncodeRun(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	output, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if output != input {
		t.Fatalf("round trip changed record: %+v vs %+v", output, input)
	}
}

func TestDecodeRunRejectsVersionMismatch(t *testing.T) {
	run := testRun("run-1", "2026-08-23T10:00:00Z")
	run.SchemaVersion = CurrentSchemaVersion + 1
	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeRun(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestDecodeRunRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeRun([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
