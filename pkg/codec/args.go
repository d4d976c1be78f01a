// pkg/codec/args.go
package codec

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Delimiter joins arguments in the legacy wire form.
const Delimiter = ","

// Args converts between an argument list and the single `args` query value.
type Args interface {
	Encode(args []string) (string, error)
	Decode(raw string) ([]string, error)
	Name() string
}

var (
	// Legacy is the comma-joined form. Values are not escaped, so an argument
	// containing the delimiter splits into several on decode.
	Legacy Args = legacyArgs{}
	// JSONArray carries the list as a JSON array; any value round-trips.
	JSONArray Args = jsonArgs{}
)

// ArgsFor picks the wire form for the legacy compatibility flag.
func ArgsFor(legacy bool) Args {
	if legacy {
		return Legacy
	}
	return JSONArray
}

type legacyArgs struct{}

func (legacyArgs) Name() string { return "legacy" }

func (legacyArgs) Encode(args []string) (string, error) {
	return strings.Join(args, Delimiter), nil
}

// Decode splits on the delimiter. An empty value is one empty argument, the
// same list a legacy caller sending `args=` always produced.
func (legacyArgs) Decode(raw string) ([]string, error) {
	return strings.Split(raw, Delimiter), nil
}

type jsonArgs struct{}

func (jsonArgs) Name() string { return "json" }

func (jsonArgs) Encode(args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	b, err := JSON.Marshal(args)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode accepts a JSON array. Strings are taken verbatim and other scalars by
// their JSON text. A value that is not an array is a single argument.
func (jsonArgs) Decode(raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if !strings.HasPrefix(trimmed, "[") {
		return []string{raw}, nil
	}

	var items []json.RawMessage
	if err := JSON.Unmarshal([]byte(trimmed), &items); err != nil {
		return nil, fmt.Errorf("args: %w", err)
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		if len(it) > 0 && it[0] == '"' {
			var s string
			if err := json.Unmarshal(it, &s); err != nil {
				return nil, fmt.Errorf("args[%d]: %w", i, err)
			}
			out = append(out, s)
			continue
		}
		switch it[0] {
		case '[', '{':
			return nil, fmt.Errorf("args[%d]: nested values are not supported", i)
		}
		out = append(out, string(it))
	}
	return out, nil
}
