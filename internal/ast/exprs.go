package ast

// Expr is any Rx expression. spec.md §3.3 enumerates the sum: literal,
// variable, path, field access, index, struct/array literal, array
// repeat, cast, binary, unary, assignment, block, if, loop, while, call,
// method-call, break, continue, return.
type Expr interface {
	Node
	exprNode()
}

// LiteralKind distinguishes the concrete form of a LiteralExpr.
type LiteralKind int

const (
	IntLit LiteralKind = iota
	BoolLit
	CharLit
	StringLit
	UnitLit
)

// LiteralExpr is a literal token. Suffix carries an explicit integer-type
// suffix ("i32", "u32", "isize", "usize") or "" when unsuffixed, in which
// case pass 6 types it from the surrounding TypeExpectation.
type LiteralExpr struct {
	NodeSpan
	Kind   LiteralKind
	Text   string
	Suffix string
}

func (*LiteralExpr) exprNode() {}

// PathExpr is an identifier or `::`-separated path used as a value:
// a local/const/function name, or a qualified path such as
// `String::from`, `Self::SOME_CONST`, `TypeName::assoc_fn`.
type PathExpr struct {
	NodeSpan
	Segments []string
}

func (*PathExpr) exprNode() {}

// FieldExpr is `receiver.name`.
type FieldExpr struct {
	NodeSpan
	Receiver Expr
	Name     string
}

func (*FieldExpr) exprNode() {}

// IndexExpr is `receiver[index]`.
type IndexExpr struct {
	NodeSpan
	Receiver Expr
	Index    Expr
}

func (*IndexExpr) exprNode() {}

// StructLitExpr is `Path { name: value, ... }`.
type StructLitExpr struct {
	NodeSpan
	Path   []string
	Fields []FieldInit
}

func (*StructLitExpr) exprNode() {}

// ArrayLitExpr is `[e1, e2, ...]`.
type ArrayLitExpr struct {
	NodeSpan
	Elements []Expr
}

func (*ArrayLitExpr) exprNode() {}

// ArrayRepeatExpr is `[value; count]`.
type ArrayRepeatExpr struct {
	NodeSpan
	Value Expr
	Count Expr
}

func (*ArrayRepeatExpr) exprNode() {}

// CastExpr is `value as Type`.
type CastExpr struct {
	NodeSpan
	Value Expr
	Type  *TypeNode
}

func (*CastExpr) exprNode() {}

// BinOp enumerates the binary operators spec.md §4.6 assigns rules to.
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
	LogAnd // &&
	LogOr  // ||
	CmpEq
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	NodeSpan
	Op    BinOp
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnOp enumerates the unary operators. `~` is bitwise complement,
// distinct from boolean `!`, per spec.md §4.4's const-evaluator whitelist
// listing both.
type UnOp int

const (
	Neg UnOp = iota
	Not
	BitNot
)

// UnaryExpr is `op operand`.
type UnaryExpr struct {
	NodeSpan
	Op      UnOp
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// RefExpr is `&operand` or `&mut operand`.
type RefExpr struct {
	NodeSpan
	Mutable bool
	Operand Expr
}

func (*RefExpr) exprNode() {}

// DerefExpr is `*operand`.
type DerefExpr struct {
	NodeSpan
	Operand Expr
}

func (*DerefExpr) exprNode() {}

// AssignExpr is `target = value`.
type AssignExpr struct {
	NodeSpan
	Target Expr
	Value  Expr
}

func (*AssignExpr) exprNode() {}

// Block is items (hoisted) + ordered statements + optional tail
// expression, per spec.md §3.3. Items are order-independent and appear
// among Stmts as ItemStmt; pass 2's symbol-collection sub-phase scans
// Stmts for ItemStmt entries before walking the block in source order
// (spec.md §4.2), which is what "hoisted" means here — there is no
// separate item list at the AST level.
type Block struct {
	NodeSpan
	Stmts []Stmt
	Tail  Expr
}

// BlockExpr wraps a Block so it can appear in expression position.
type BlockExpr struct {
	NodeSpan
	Block *Block
}

func (*BlockExpr) exprNode() {}

// IfExpr is `if cond { then } [else else]`. Else is nil, a *BlockExpr, or
// another *IfExpr (else-if chaining).
type IfExpr struct {
	NodeSpan
	Cond Expr
	Then *Block
	Else Expr
}

func (*IfExpr) exprNode() {}

// LoopExpr is `loop { body }`.
type LoopExpr struct {
	NodeSpan
	Body *Block
}

func (*LoopExpr) exprNode() {}

// WhileExpr is `while cond { body }`.
type WhileExpr struct {
	NodeSpan
	Cond Expr
	Body *Block
}

func (*WhileExpr) exprNode() {}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	NodeSpan
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// MethodCallExpr is `receiver.method(args...)`.
type MethodCallExpr struct {
	NodeSpan
	Receiver Expr
	Method   string
	Args     []Expr
}

func (*MethodCallExpr) exprNode() {}

// BreakExpr is `break [value]`.
type BreakExpr struct {
	NodeSpan
	Value Expr
}

func (*BreakExpr) exprNode() {}

// ContinueExpr is `continue`.
type ContinueExpr struct {
	NodeSpan
}

func (*ContinueExpr) exprNode() {}

// ReturnExpr is `return [value]`.
type ReturnExpr struct {
	NodeSpan
	Value Expr
}

func (*ReturnExpr) exprNode() {}
