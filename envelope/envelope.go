package envelope

import (
	"bytes"
	"encoding/json"
)

// Kind classifies a parsed provider response.
type Kind int

const (
	// KindMalformed indicates a body that is not a recognizable envelope:
	// non-JSON, a non-object top level, or an object carrying neither
	// "data" nor "error".
	KindMalformed Kind = iota

	// KindData indicates a success envelope carrying a data payload.
	KindData

	// KindError indicates a structured provider error envelope.
	KindError
)

// String returns the kind name for logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindError:
		return "error"
	default:
		return "malformed"
	}
}

// ProviderError holds the fields of a Mixin error envelope. All fields
// are optional on the wire; absent sub-fields keep their zero value and
// never cause a parse failure.
type ProviderError struct {
	Description string `json:"description"`
	Status      int    `json:"status"`
	Code        int    `json:"code"`
}

// Result is the outcome of parsing one provider response body. Exactly
// one of Data and Err is meaningful, selected by Kind.
type Result struct {
	Kind Kind

	// Data is the unwrapped success payload. A success envelope with
	// "data": null yields an empty, non-nil map so callers never have
	// to distinguish the two.
	Data map[string]any

	// Err is the provider error when Kind is KindError.
	Err *ProviderError

	// Raw preserves the original body for diagnostics when Kind is
	// KindMalformed. Never surface it to end users verbatim.
	Raw []byte
}

// wire mirrors the envelope at the top level. Raw messages keep the
// data/error distinction visible before committing to a payload shape.
type wire struct {
	Data  json.RawMessage `json:"data"`
	Error json.RawMessage `json:"error"`
}

// Parse decodes a raw provider response body. It is total: any byte
// sequence produces a Result, never an error or a panic.
func Parse(raw []byte) Result {
	var env wire
	if err := json.Unmarshal(raw, &env); err != nil {
		return malformed(raw)
	}

	if present(env.Error) {
		var perr ProviderError
		if err := json.Unmarshal(env.Error, &perr); err != nil {
			return malformed(raw)
		}
		return Result{Kind: KindError, Err: &perr}
	}

	// A "data" key set to null still counts as a success envelope with
	// an empty payload; a missing "data" key does not.
	if env.Data != nil {
		data := map[string]any{}
		if present(env.Data) {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				return malformed(raw)
			}
		}
		return Result{Kind: KindData, Data: data}
	}

	return malformed(raw)
}

func malformed(raw []byte) Result {
	return Result{Kind: KindMalformed, Raw: raw}
}

// present reports whether a raw field was set to something other than
// JSON null.
func present(m json.RawMessage) bool {
	return len(m) > 0 && !bytes.Equal(m, []byte("null"))
}
