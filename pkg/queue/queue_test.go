package queue

import (
	"encoding/json"
	"testing"
)

type retrainPayload struct {
	Symbol string `json:"symbol"`
}

func TestParsePayloadVariants(t *testing.T) {
	cases := map[string]interface{}{
		"struct":  retrainPayload{Symbol: "AAPL"},
		"pointer": &retrainPayload{Symbol: "AAPL"},
		"raw":     json.RawMessage(`{"symbol":"AAPL"}`),
		"bytes":   []byte(`{"symbol":"AAPL"}`),
		"map":     map[string]interface{}{"symbol": "AAPL"},
	}
	for name, in := range cases {
		got, err := ParsePayload[retrainPayload](in)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got.Symbol != "AAPL" {
			t.Fatalf("%s: unexpected symbol %q", name, got.Symbol)
		}
	}
}

func TestParsePayloadRejectsUnknown(t *testing.T) {
	if _, err := ParsePayload[retrainPayload](42); err == nil {
		t.Fatalf("expected error for int payload")
	}
	if _, err := ParsePayload[retrainPayload](json.RawMessage(`{bad`)); err == nil {
		t.Fatalf("expected error for malformed json")
	}
}
