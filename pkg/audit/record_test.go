package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNoTargetsYieldsNoop(t *testing.T) {
	p, err := NewRelayPublisher(context.Background(), RelayOptions{Targets: []string{" ", ""}, Topic: "x"})
	if err != nil {
		t.Fatalf("NewRelayPublisher: %v", err)
	}
	if _, ok := p.(Noop); !ok {
		t.Fatalf("expected Noop, got %T", p)
	}
	if err := p.Publish(context.Background(), Record{}); err != nil {
		t.Fatalf("Noop.Publish: %v", err)
	}
}

func TestTopicRequiredWithTargets(t *testing.T) {
	_, err := NewRelayPublisher(context.Background(), RelayOptions{Targets: []string{"localhost:50051"}})
	if err == nil || !strings.Contains(err.Error(), "topic") {
		t.Fatalf("expected topic error, got %v", err)
	}
}

func TestPublishJSONOmitsArgumentValues(t *testing.T) {
	var got []byte
	rec := Record{
		ID:         "id-1",
		Function:   "putValues",
		Args:       2,
		OK:         false,
		Error:      "boom",
		DurationMS: 12,
		At:         time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	}
	err := publishJSON(context.Background(), func(_ context.Context, b []byte) error {
		got = b
		return nil
	}, rec)
	if err != nil {
		t.Fatalf("publishJSON: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(got, &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["function"] != "putValues" || m["args"] != float64(2) || m["error"] != "boom" {
		t.Fatalf("unexpected record %s", got)
	}
	if _, ok := m["request_id"]; ok {
		t.Fatalf("empty request_id should be omitted: %s", got)
	}
}

func TestPublishJSONSubmitError(t *testing.T) {
	want := errors.New("relay down")
	err := publishJSON(context.Background(), func(context.Context, []byte) error { return want }, Record{})
	if !errors.Is(err, want) {
		t.Fatalf("expected submit error, got %v", err)
	}
}

func TestFuncAdapter(t *testing.T) {
	n := 0
	var p Publisher = Func(func(context.Context, Record) error { n++; return nil })
	_ = p.Publish(context.Background(), Record{})
	if n != 1 {
		t.Fatalf("Func adapter not called")
	}
}

func TestBadAESKeyRejectedBeforeRelay(t *testing.T) {
	_, err := NewRelayPublisher(context.Background(), RelayOptions{
		Targets:   []string{"localhost:50051"},
		Topic:     "rpc.invocations",
		AESKeyHex: "zz",
	})
	if err == nil || !strings.Contains(err.Error(), "aes key") {
		t.Fatalf("expected aes key error, got %v", err)
	}
}
