package types

import (
	"embed"
	"fmt"

	"github.com/goccy/go-yaml"
)

//go:embed builtins.yaml
var builtinTableFS embed.FS

// ParamMode tags how a parameter crosses the call boundary at the ABI
// level (spec.md §3.2's Signature.abi_params): ByVal copies a scalar,
// ByValCallerCopy copies an aggregate the callee owns outright (used for
// struct/array parameters passed by value, see internal/mir/abi.go; no
// entry of builtins.yaml uses it), Ref passes a pointer
// the callee must not outlive the call.
type ParamMode int

const (
	ByVal ParamMode = iota
	ByValCallerCopy
	Ref
)

func (m ParamMode) String() string {
	switch m {
	case ByVal:
		return "byval"
	case ByValCallerCopy:
		return "byval-caller-copy"
	case Ref:
		return "ref"
	default:
		return "unknown"
	}
}

// BuiltinParam is one formal parameter of a builtin signature.
type BuiltinParam struct {
	Type TypeId
	Mode ParamMode
}

// BuiltinSignature is a fully resolved builtin/runtime-helper signature,
// loaded once from builtins.yaml at Context construction (spec.md §6's
// "builtin runtime surface" table) rather than hardcoded across the
// resolver, matching the teacher's table-driven builtin registration
// (internal/interp/builtins package) over inline switch sprawl.
type BuiltinSignature struct {
	Name     string
	Receiver *BuiltinParam // non-nil for `String::append`'s `&mut self`
	Params   []BuiltinParam
	Return   TypeId
	Diverges bool // true only for `exit`: typed as returning (), runtime diverges
}

// yamlEntry mirrors one row of builtins.yaml.
type yamlEntry struct {
	Name     string   `yaml:"name"`
	Receiver string   `yaml:"receiver"`
	Params   []string `yaml:"params"`
	Modes    []string `yaml:"modes"`
	Return   string   `yaml:"return"`
	Diverges bool     `yaml:"diverges"`
}

func loadBuiltinTable(c *Context) map[string]*BuiltinSignature {
	raw, err := builtinTableFS.ReadFile("builtins.yaml")
	if err != nil {
		panic(fmt.Sprintf("types: embedded builtins.yaml missing: %v", err))
	}

	var entries []yamlEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		panic(fmt.Sprintf("types: malformed builtins.yaml: %v", err))
	}

	out := make(map[string]*BuiltinSignature, len(entries))
	for _, e := range entries {
		sig := &BuiltinSignature{Name: e.Name, Diverges: e.Diverges}

		if e.Receiver != "" {
			id, err := parsePrimitiveName(c, e.Receiver)
			if err != nil {
				panic(fmt.Sprintf("types: builtin %s: receiver: %v", e.Name, err))
			}
			sig.Receiver = &BuiltinParam{Type: id, Mode: modeFor(e.Receiver)}
		}

		for i, p := range e.Params {
			id, err := parsePrimitiveName(c, p)
			if err != nil {
				panic(fmt.Sprintf("types: builtin %s: param %d: %v", e.Name, i, err))
			}
			mode := modeFor(p)
			if i < len(e.Modes) {
				mode = parseMode(e.Modes[i])
			}
			sig.Params = append(sig.Params, BuiltinParam{Type: id, Mode: mode})
		}

		ret, err := parsePrimitiveName(c, e.Return)
		if err != nil {
			panic(fmt.Sprintf("types: builtin %s: return: %v", e.Name, err))
		}
		sig.Return = ret

		out[e.Name] = sig
	}
	return out
}

// modeFor infers a default ABI mode from the surface type spelling: a
// leading `&` means Ref unless overridden explicitly via the `modes` list.
func modeFor(typeName string) ParamMode {
	if len(typeName) > 0 && typeName[0] == '&' {
		return Ref
	}
	return ByVal
}

func parseMode(s string) ParamMode {
	switch s {
	case "ref":
		return Ref
	case "byval_caller_copy":
		return ByValCallerCopy
	default:
		return ByVal
	}
}
