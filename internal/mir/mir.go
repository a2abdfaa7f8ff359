// Package mir is the SSA-form Mid-Level IR produced by pass 9 (spec.md
// §3.5, §4.9): a basic-block graph per function, consumed by an external
// machine-IR emitter. Grounded on the teacher's
// internal/bytecode/compiler_core.go local-slot table and loop-jump-patch
// bookkeeping (kept as a pattern: linear jump patching generalizes here
// to terminator/successor wiring between named blocks) and
// other_examples' gogpu-naga SPIR-V backend for the handle-indexed,
// block/terminator shape of a real lowering target.
package mir

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// LocalId indexes a MirFunction's Locals (parameters and `let` bindings,
// including the synthetic sret destination and any compiler-introduced
// temporaries that need a memory address — spec.md §3.1).
type LocalId int

// TempId indexes a MirFunction's TempTypes: an SSA scalar value, defined
// exactly once (spec.md §3.5 invariant).
type TempId int

// BasicBlockId indexes a MirFunction's Blocks.
type BasicBlockId int

// FunctionId indexes a MirModule's Functions.
type FunctionId int

// ReturnDesc is how a function returns its value at the ABI level
// (spec.md §3.5).
type ReturnDesc struct {
	Kind ReturnKind
	Type types.TypeId // valid for Direct/IndirectSRet
}

type ReturnKind int

const (
	ReturnVoid ReturnKind = iota
	ReturnDirect
	ReturnIndirectSRet
	ReturnNever
)

// AbiParam is one caller-side parameter slot, tagged with how it crosses
// the call boundary (spec.md §3.5 "abi_params").
type AbiParam struct {
	Type types.TypeId
	Mode types.ParamMode
}

// Signature is a MIR function's ABI-level shape, built by the ABI planner
// from the HIR signature (spec.md §4.9 "ABI plan"): a leading sret pointer
// when ReturnIndirectSRet, followed by AbiParams.
type Signature struct {
	Return    ReturnDesc
	Params    []types.TypeId // HIR-level parameter types, one per source parameter
	AbiParams []AbiParam     // caller-side reality: sret (if any) + params
}

// LocalInfo describes one addressable local slot.
type LocalInfo struct {
	Name    string // "" for compiler-synthesized temporaries/sret
	Type    types.TypeId
	Mutable bool
	IsSRet  bool // true for the synthetic NRVO/sret destination local
	IsParam bool
}

// MirFunction is one lowered function or method body (spec.md §3.5).
type MirFunction struct {
	ID         FunctionId
	Name       string
	Signature  Signature
	Locals     []LocalInfo
	TempTypes  []types.TypeId
	Blocks     []*BasicBlock
	StartBlock BasicBlockId
}

func (f *MirFunction) NewLocal(info LocalInfo) LocalId {
	id := LocalId(len(f.Locals))
	f.Locals = append(f.Locals, info)
	return id
}

func (f *MirFunction) NewTemp(t types.TypeId) TempId {
	id := TempId(len(f.TempTypes))
	f.TempTypes = append(f.TempTypes, t)
	return id
}

func (f *MirFunction) NewBlock() BasicBlockId {
	id := BasicBlockId(len(f.Blocks))
	f.Blocks = append(f.Blocks, &BasicBlock{ID: id})
	return id
}

func (f *MirFunction) Block(id BasicBlockId) *BasicBlock { return f.Blocks[int(id)] }

// BasicBlock is a straight-line sequence of phis + statements ending in
// exactly one terminator (spec.md §3.5 invariant: "no block is appended to
// after it is terminated").
type BasicBlock struct {
	ID         BasicBlockId
	Phis       []PhiNode
	Statements []Statement
	Terminator Terminator
	terminated bool
}

func (b *BasicBlock) Terminated() bool { return b.terminated }

func (b *BasicBlock) Push(s Statement) {
	if b.terminated {
		panic("mir: appended a statement to an already-terminated block")
	}
	b.Statements = append(b.Statements, s)
}

func (b *BasicBlock) Terminate(t Terminator) {
	if b.terminated {
		panic("mir: block terminated twice")
	}
	b.Terminator = t
	b.terminated = true
}

// PhiNode merges incoming SSA values at a block's head (spec.md §3.5).
type PhiNode struct {
	Dest     TempId
	Type     types.TypeId
	Incoming []PhiIncoming
}

type PhiIncoming struct {
	Block BasicBlockId
	Temp  TempId
}

// ProjectionKind distinguishes the shape of one Place projection step.
type ProjectionKind int

const (
	ProjField ProjectionKind = iota
	ProjIndex
	ProjDeref
)

// Projection is one step of a Place's projection chain (spec.md §3.5).
type Projection struct {
	Kind       ProjectionKind
	FieldIndex int     // ProjField
	IndexOp    Operand // ProjIndex
}

// Place is an addressable memory location: a base local plus a chain of
// field/index/deref projections (spec.md §3.5).
type Place struct {
	Base        LocalId
	Projections []Projection
	Type        types.TypeId // the type of the place after all projections
}

func (p Place) Field(idx int, fieldType types.TypeId) Place {
	out := Place{Base: p.Base, Type: fieldType}
	out.Projections = append(append(out.Projections[:0:0], p.Projections...), Projection{Kind: ProjField, FieldIndex: idx})
	return out
}

func (p Place) Index(op Operand, elemType types.TypeId) Place {
	out := Place{Base: p.Base, Type: elemType}
	out.Projections = append(append(out.Projections[:0:0], p.Projections...), Projection{Kind: ProjIndex, IndexOp: op})
	return out
}

func (p Place) Deref(targetType types.TypeId) Place {
	out := Place{Base: p.Base, Type: targetType}
	out.Projections = append(append(out.Projections[:0:0], p.Projections...), Projection{Kind: ProjDeref})
	return out
}

// OperandKind distinguishes a constant value from an SSA temp.
type OperandKind int

const (
	OperandConstant OperandKind = iota
	OperandTemp
)

// ConstKind is the shape of a Constant operand's payload.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstChar
	ConstUnit
	// ConstStr is a `&str` string-literal constant. `str` is a primitive
	// only ever touched through a reference (spec.md §3.2), so its literal
	// form is still a scalar Operand — the byte data itself lives in the
	// emitter's read-only data section, addressed by this handle.
	ConstStr
)

// Constant is a compile-time scalar value (spec.md §3.5: "Aggregates
// cannot be operands").
type Constant struct {
	Kind ConstKind
	Int  int64
	Bool bool
	Char rune
	Str  string
	Type types.TypeId
}

// Operand is a scalar rvalue source: either a Constant or an SSA Temp
// (spec.md §3.5).
type Operand struct {
	Kind     OperandKind
	Constant Constant
	Temp     TempId
	Type     types.TypeId
}

func ConstOperand(c Constant) Operand {
	return Operand{Kind: OperandConstant, Constant: c, Type: c.Type}
}

func TempOperand(t TempId, ty types.TypeId) Operand {
	return Operand{Kind: OperandTemp, Temp: t, Type: ty}
}

// RValueKind distinguishes the shape of an RValue.
type RValueKind int

const (
	RValUse RValueKind = iota
	RValBinary
	RValUnary
	RValCast
	RValRef
	RValArrayRepeat
	RValAggregate
	// RValCopy is a whole-value place-to-place copy, used when an
	// aggregate-typed place (a struct/array local, field, or element) is
	// read into another place as a unit rather than rebuilt field by
	// field (spec.md §4.9: aggregates still move as a unit at the place
	// level, just never through a scalar Operand).
	RValCopy
)

// BinOp mirrors ast.BinOp's arithmetic/bitwise/comparison operators at the
// MIR level (logical && / || never reach MIR — they're lowered as `if`,
// spec.md §4.9 "Short-circuit `&&`/`||`").
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Rem
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	CmpEq
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// UnOp mirrors ast.UnOp at the MIR level.
type UnOp int

const (
	Neg UnOp = iota
	Not
	BitNot
)

func (op BinOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Rem:
		return "%"
	case BitAnd:
		return "&"
	case BitOr:
		return "|"
	case BitXor:
		return "^"
	case Shl:
		return "<<"
	case Shr:
		return ">>"
	case CmpEq:
		return "=="
	case CmpNe:
		return "!="
	case CmpLt:
		return "<"
	case CmpLe:
		return "<="
	case CmpGt:
		return ">"
	case CmpGe:
		return ">="
	default:
		return "unknown"
	}
}

func (op UnOp) String() string {
	switch op {
	case Neg:
		return "-"
	case Not:
		return "!"
	case BitNot:
		return "~"
	default:
		return "unknown"
	}
}

func (k ReturnKind) String() string {
	switch k {
	case ReturnVoid:
		return "void"
	case ReturnDirect:
		return "direct"
	case ReturnIndirectSRet:
		return "sret"
	case ReturnNever:
		return "never"
	default:
		return "unknown"
	}
}

// RValue is the right-hand side of a Define/Assign statement (spec.md
// §3.5).
type RValue struct {
	Kind      RValueKind
	Use       Operand
	BinOp     BinOp
	Left      Operand
	Right     Operand
	UnOp      UnOp
	Operand   Operand
	CastType  types.TypeId
	RefPlace  Place
	RefMut    bool
	RepeatVal Operand
	RepeatLen uint64
	CopyFrom  Place // RValCopy
	Type      types.TypeId
}

// StatementKind distinguishes the shape of one Statement.
type StatementKind int

const (
	StmtDefine StatementKind = iota
	StmtAssign
	StmtLoad
	StmtCall
)

// CallTargetKind mirrors hir.CallTargetKind at the MIR level.
type CallTargetKind int

const (
	CallFunction CallTargetKind = iota
	CallBuiltin
)

// CallTarget is the resolved callee of a MIR Call statement.
type CallTarget struct {
	Kind     CallTargetKind
	Function FunctionId
	Builtin  string
}

// Statement is one instruction within a basic block (spec.md §3.5). Span
// carries the source location it was lowered from (spec.md §3.1: "every
// AST, HIR, and MIR node carries a span for diagnostics").
type Statement struct {
	Kind StatementKind
	Span diag.Span

	// Define(temp, rvalue)
	DefineTemp TempId
	RValue     RValue

	// Assign(place, source) — source is Args[0] (a plain Use) when
	// AssignRValue is nil, or the full RValue (ArrayRepeat/Copy) otherwise.
	// Aggregates are normally built field-by-field by the DPS lowerer
	// instead; AssignRValue's RValCopy/RValArrayRepeat are the two cases
	// where an aggregate still moves as a unit.
	AssignPlace  Place
	AssignRValue *RValue

	// Load(temp, place)
	LoadTemp  TempId
	LoadPlace Place

	// Call(target, args, destPlace?)
	CallTarget CallTarget
	Args       []Operand
	DestPlace  *Place // nil when the call's result is unit/never/discarded
	DestTemp   *TempId
}

// TerminatorKind distinguishes the shape of a block's Terminator.
type TerminatorKind int

const (
	TermGoto TerminatorKind = iota
	TermSwitchInt
	TermReturn
	TermUnreachable
)

// SwitchTarget is one `value -> block` arm of a SwitchInt (Rx only ever
// produces boolean switches, i.e. exactly the two arms true/false, but the
// shape is general per spec.md §3.5).
type SwitchTarget struct {
	Value int64
	Block BasicBlockId
}

// Terminator ends a basic block (spec.md §3.5).
type Terminator struct {
	Kind      TerminatorKind
	Span      diag.Span
	Goto      BasicBlockId
	Discr     Operand
	Targets   []SwitchTarget
	Otherwise BasicBlockId
	ReturnOp  *Operand
}

// ExternalFunction is a builtin/runtime helper the emitter must provide
// (spec.md §3.5, §6's builtin runtime surface table).
type ExternalFunction struct {
	Name      string
	Signature Signature
}

// MirModule is the root artifact pass 9 produces (spec.md §3.5).
type MirModule struct {
	Functions         []*MirFunction
	ExternalFunctions []ExternalFunction
}
