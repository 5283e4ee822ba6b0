package ast

// Location records the source position an expression or statement came
// from, for error reporting only; the generator never inspects it to decide
// behavior.
type Location struct {
	File   string
	Line   int
	Column int
}

// Literal is a parsed constant value attached to a leaf Expr. Exactly one
// field is meaningful, selected by the Expr's Type.
type Literal struct {
	Int        Int128
	Bool       bool
	Buffer     []byte // buffer, string-ascii literal bytes, or principal encoding
	StringUTF8 []rune
}

// Int128 holds a signed or unsigned 128-bit integer as two 64-bit halves,
// matching the in-memory and operand-stack layout of int/uint everywhere
// else in the generator.
type Int128 struct {
	Low  uint64
	High uint64
}

// Expr is a single node of the analyzed expression tree. The source
// language is expression-oriented (every special form and operator
// application looks the same structurally): Op names the word that must
// lower this node, Args holds its already-analyzed subexpressions, and Type
// is this expression's static result type, fixed by the front end.
//
// Word handlers receive the Expr itself alongside its Args so that they can
// read form-specific data (e.g. a `let` expression's binding names) without
// a combinatorial explosion of Expr subtypes; that data lives in the Extra
// field, type-asserted by the handler that knows what it put there.
type Expr struct {
	Op       string
	Args     []Expr
	Type     Type
	Literal  *Literal
	Ident    string // set for Op == "var" (identifier reference)
	Location Location
	Extra    interface{}
}

// LetBinding is Extra for Op == "let".
type LetBinding struct {
	Names []string
	Types []Type
	Inits []Expr
	Body  []Expr
}

// MatchArm is Extra for Op == "match".
type MatchArm struct {
	Subject     Expr
	SomeOrOkBind string
	SomeOrOkBody []Expr
	NoneOrErrBind string
	NoneOrErrBody []Expr
	IsResponse  bool
}

// FunctionCallbackArg is Extra for filter/fold/map: the name of the
// user-defined function invoked per element.
type FunctionCallbackArg struct {
	FuncName string
}

// Param is a single function parameter: a name and its declared type.
type Param struct {
	Name string
	Type Type
}

// FunctionKind enumerates the three define-*-function forms.
type FunctionKind int

const (
	FunctionPrivate FunctionKind = iota
	FunctionPublic
	FunctionReadOnly
)

// Function is one define-private/define-public/define-read-only form.
type Function struct {
	Kind       FunctionKind
	Name       string
	Params     []Param
	ReturnType Type
	Body       []Expr
}

// Exported reports whether the host-callable ABI and the module's export
// section must include this function.
func (f Function) Exported() bool {
	return f.Kind == FunctionPublic || f.Kind == FunctionReadOnly
}

// Constant is a define-constant form.
type Constant struct {
	Name string
	Type Type
	Init Expr // literal or a non-literal initializer evaluated at top-level
}

// DataVar is a define-data-var form.
type DataVar struct {
	Name string
	Type Type
	Init Expr
}

// Map is a define-map form.
type Map struct {
	Name    string
	KeyType Type
	ValType Type
}

// FungibleToken is a define-fungible-token form.
type FungibleToken struct {
	Name        string
	TotalSupply *Expr // nil if unbounded
}

// NonFungibleToken is a define-non-fungible-token form.
type NonFungibleToken struct {
	Name    string
	IDType  Type
}

// Contract is the whole analyzed unit the generator compiles: its
// top-level define-forms, held in one slice per kind. The relative source
// order of forms of different kinds is not recorded; `.top-level` runs the
// slices one kind after another (see codegen's generateTopLevel).
type Contract struct {
	Constants        []Constant
	DataVars         []DataVar
	Maps             []Map
	FungibleTokens   []FungibleToken
	NonFungibleTokens []NonFungibleToken
	Functions        []Function
}
