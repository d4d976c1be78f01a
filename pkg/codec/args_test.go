package codec

import (
	"reflect"
	"testing"
)

func TestLegacyRoundTrip(t *testing.T) {
	in := []string{"a", "b", "c"}
	raw, err := Legacy.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if raw != "a,b,c" {
		t.Fatalf("Encode = %q", raw)
	}
	out, err := Legacy.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("round trip: got %v want %v", out, in)
	}
}

// An argument holding the delimiter does not survive the legacy form.
func TestLegacyDelimiterIsLossy(t *testing.T) {
	raw, _ := Legacy.Encode([]string{"a,b", "c"})
	out, err := Legacy.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v want %v", out, want)
	}
}

func TestLegacyDecodeSingleAndEmpty(t *testing.T) {
	out, _ := Legacy.Decode("folder")
	if !reflect.DeepEqual(out, []string{"folder"}) {
		t.Fatalf("single: got %v", out)
	}
	out, _ = Legacy.Decode("")
	if !reflect.DeepEqual(out, []string{""}) {
		t.Fatalf("empty: got %v", out)
	}
	out, _ = Legacy.Decode("a,")
	if !reflect.DeepEqual(out, []string{"a", ""}) {
		t.Fatalf("trailing delimiter: got %v", out)
	}
}

func TestJSONArrayRoundTrip(t *testing.T) {
	in := []string{"a,b", "c", `quote "q"`, ""}
	raw, err := JSONArray.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := JSONArray.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("round trip: got %v want %v", out, in)
	}
}

func TestJSONArrayDecode(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"[]", []string{}},
		{`[1, 2.5, true, null]`, []string{"1", "2.5", "true", "null"}},
		{"plain", []string{"plain"}},
		{"a,b", []string{"a,b"}},
	}
	for _, tc := range tests {
		got, err := JSONArray.Decode(tc.raw)
		if err != nil {
			t.Fatalf("%q: %v", tc.raw, err)
		}
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%q: got %v want %v", tc.raw, got, tc.want)
		}
	}
}

func TestJSONArrayDecodeErrors(t *testing.T) {
	for _, raw := range []string{`[`, `["a"] x`, `[["nested"]]`, `[{"k":1}]`} {
		if _, err := JSONArray.Decode(raw); err == nil {
			t.Fatalf("%q: expected error", raw)
		}
	}
}

func TestArgsFor(t *testing.T) {
	if ArgsFor(true).Name() != "legacy" || ArgsFor(false).Name() != "json" {
		t.Fatalf("ArgsFor picked the wrong codec")
	}
}

func TestStrictRejectsUnknownFields(t *testing.T) {
	var v struct {
		Value any `json:"value"`
	}
	if err := JSONStrict.Unmarshal([]byte(`{"value":1,"extra":2}`), &v); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if err := JSON.Unmarshal([]byte(`{"value":1,"extra":2}`), &v); err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	if err := JSON.Unmarshal([]byte(`{"value":1}{}`), &v); err == nil {
		t.Fatalf("expected trailing content error")
	}
}
