package diag

// Kind is the fixed eight-plus-one diagnostic taxonomy of spec.md §7.
// Every user-visible failure maps to exactly one kind.
type Kind int

const (
	SyntaxError Kind = iota
	UndefinedName
	MultipleDefinition
	TypeMismatch
	InvalidType
	ImmutableVariableMutated
	TraitItemUnimplemented
	InvalidControlFlow
	MissingReturn
)

var kindNames = [...]string{
	SyntaxError:              "SyntaxError",
	UndefinedName:            "UndefinedName",
	MultipleDefinition:       "MultipleDefinition",
	TypeMismatch:             "TypeMismatch",
	InvalidType:              "InvalidType",
	ImmutableVariableMutated: "ImmutableVariableMutated",
	TraitItemUnimplemented:   "TraitItemUnimplemented",
	InvalidControlFlow:       "InvalidControlFlow",
	MissingReturn:            "MissingReturn",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UnknownDiagnostic"
}
