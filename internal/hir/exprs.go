package hir

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// LiteralExpr mirrors ast.LiteralExpr; Suffix "" means unsuffixed, typed
// from the surrounding TypeExpectation during pass 6.
type LiteralExpr struct {
	ExprBase
	Kind   ast.LiteralKind
	Text   string
	Suffix string
}

// PathExpr is a value-position identifier/path; Target is resolved by
// pass 2 (plain names) since `self`/locals/consts/functions don't need a
// receiver type to resolve, unlike method calls.
type PathExpr struct {
	ExprBase
	Segments []string
	Target   PathTarget
}

// FieldExpr is `receiver.name`; Target is resolved by pass 6 once the
// receiver's type (after auto-deref) is known.
type FieldExpr struct {
	ExprBase
	Receiver Expr
	Name     string
	Target   FieldAccessTarget
}

// IndexExpr is `receiver[index]`.
type IndexExpr struct {
	ExprBase
	Receiver Expr
	Index    Expr
}

// FieldInit is one `name: value` entry of a struct literal; FieldIndex is
// resolved alongside StructLitExpr.StructID by pass 2.
type FieldInit struct {
	Base
	Name       string
	Value      Expr
	FieldIndex int
}

// StructLitExpr is `Path { fields... }`; StructID is resolved by pass 2
// (the path always names a type, independent of field contents).
type StructLitExpr struct {
	ExprBase
	Path     []string
	StructID types.StructId
	Resolved bool
	Fields   []*FieldInit
}

// ArrayLitExpr is `[e1, e2, ...]`.
type ArrayLitExpr struct {
	ExprBase
	Elements []Expr
}

// ArrayRepeatExpr is `[value; count]`; ConstLen is the evaluated constant
// length, filled in by pass 4's const evaluator.
type ArrayRepeatExpr struct {
	ExprBase
	Value    Expr
	Count    Expr
	ConstLen uint64
}

// CastExpr is `value as Type`.
type CastExpr struct {
	ExprBase
	Value Expr
	Type  TypeAnnotation
}

type BinaryExpr struct {
	ExprBase
	Op    ast.BinOp
	Left  Expr
	Right Expr
}

type UnaryExpr struct {
	ExprBase
	Op      ast.UnOp
	Operand Expr
}

// RefExpr is `&operand` / `&mut operand`.
type RefExpr struct {
	ExprBase
	Mutable bool
	Operand Expr
}

// DerefExpr is `*operand`.
type DerefExpr struct {
	ExprBase
	Operand Expr
}

// AssignExpr is `target = value`.
type AssignExpr struct {
	ExprBase
	Target Expr
	Value  Expr
}

// BlockExpr wraps a Block in expression position.
type BlockExpr struct {
	ExprBase
	Block *Block
}

// IfExpr is `if cond { then } [else else]`.
type IfExpr struct {
	ExprBase
	Cond Expr
	Then *Block
	Else Expr
}

// LoopExpr is `loop { body }`. BreakType/HasBreak record the unified
// break-value type as the first concrete break establishes it
// (spec.md §4.6's Never-coercion rule for loops).
type LoopExpr struct {
	ExprBase
	Body      *Block
	HasBreak  bool
	BreakType types.TypeId // types.Invalid until the first break establishes it
}

func (*LoopExpr) loopKey() {}

// WhileExpr is `while cond { body }`. A `while` never yields a value other
// than `()`, so it has no break-type collector.
type WhileExpr struct {
	ExprBase
	Cond Expr
	Body *Block
}

func (*WhileExpr) loopKey() {}

// CallExpr is `callee(args...)`; Target is resolved by pass 2 when the
// callee is a plain name/path, or left CallUnresolved for pass 6 to
// settle when the callee itself needs type information first.
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
	Target CallTarget
}

// MethodCallExpr is `receiver.method(args...)`; resolved by pass 6 via
// auto-deref/auto-ref over the receiver's (possibly reference) type.
type MethodCallExpr struct {
	ExprBase
	Receiver    Expr
	Method      string
	Args        []Expr
	Target      CallTarget
	AutoRefMut  bool // true if an implicit `&mut` was inserted on Receiver
	InsertedRef bool // true if any implicit `&`/`&mut` was inserted at all
}

// BreakExpr is `break [value]`; Loop is resolved by pass 6's loop stack
// and checked again by pass 7 (control-flow linking).
type BreakExpr struct {
	ExprBase
	Value Expr
	Loop  LoopKey
}

// ContinueExpr is `continue`; Loop is resolved by pass 6's loop stack.
type ContinueExpr struct {
	ExprBase
	Loop LoopKey
}

// ReturnExpr is `return [value]`; Function is resolved by pass 7.
type ReturnExpr struct {
	ExprBase
	Value    Expr
	Function *FunctionDecl
}
