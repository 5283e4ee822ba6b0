package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeContract parses the JSON encoding of a fully-analyzed contract —
// the wire format produced by an external front end — into a Contract. It
// is the only entry point into this package that a front end outside this
// module needs: everything else in the package is the trusted in-memory
// representation the generator walks directly.
//
// The wire format mirrors Type's and Expr's shapes but tags each
// polymorphic field ("kind" for Type, "op" together with a type-specific
// "extra" for Expr) the way ast.Term's JSON encoding tags Value in the
// teacher package this was adapted from.
func DecodeContract(data []byte) (*Contract, error) {
	var w wireContract
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("ast: decode contract: %w", err)
	}
	return w.toContract()
}

type wireType struct {
	Kind      string      `json:"kind"`
	Max       int         `json:"max,omitempty"`
	Elem      *wireType   `json:"elem,omitempty"`
	Fields    []wireField `json:"fields,omitempty"`
	Some      *wireType   `json:"some,omitempty"`
	Ok        *wireType   `json:"ok,omitempty"`
	Err       *wireType   `json:"err,omitempty"`
	TraitName string      `json:"traitName,omitempty"`
}

type wireField struct {
	Key  string   `json:"key"`
	Type wireType `json:"type"`
}

func (w *wireType) toType() (Type, error) {
	if w == nil {
		return NoType{}, nil
	}
	switch w.Kind {
	case "", "no-type":
		return NoType{}, nil
	case "int":
		return IntType{}, nil
	case "uint":
		return UintType{}, nil
	case "bool":
		return BoolType{}, nil
	case "principal":
		return PrincipalType{}, nil
	case "callable":
		return CallableType{TraitName: w.TraitName}, nil
	case "trait":
		return TraitReferenceType{TraitName: w.TraitName}, nil
	case "buffer":
		return BufferType{Max: w.Max}, nil
	case "string-ascii":
		return StringASCIIType{Max: w.Max}, nil
	case "string-utf8":
		return StringUTF8Type{Max: w.Max}, nil
	case "list":
		elem, err := w.Elem.toType()
		if err != nil {
			return nil, err
		}
		return ListType{Elem: elem, Max: w.Max}, nil
	case "tuple":
		fields := make([]TupleField, len(w.Fields))
		for i, f := range w.Fields {
			ft, err := f.Type.toType()
			if err != nil {
				return nil, err
			}
			fields[i] = TupleField{Key: f.Key, Type: ft}
		}
		return TupleType{Fields: fields}, nil
	case "optional":
		some, err := w.Some.toType()
		if err != nil {
			return nil, err
		}
		return OptionalType{Some: some}, nil
	case "response":
		ok, err := w.Ok.toType()
		if err != nil {
			return nil, err
		}
		errT, err := w.Err.toType()
		if err != nil {
			return nil, err
		}
		return ResponseType{Ok: ok, Err: errT}, nil
	default:
		return nil, fmt.Errorf("ast: unknown type kind %q", w.Kind)
	}
}

type wireLiteral struct {
	Int        *wireInt128 `json:"int,omitempty"`
	Bool       bool        `json:"bool,omitempty"`
	Buffer     []byte      `json:"buffer,omitempty"`
	StringUTF8 []int32     `json:"stringUtf8,omitempty"`
}

type wireInt128 struct {
	Low  uint64 `json:"low"`
	High uint64 `json:"high"`
}

func (w *wireLiteral) toLiteral() *Literal {
	if w == nil {
		return nil
	}
	lit := &Literal{Bool: w.Bool, Buffer: w.Buffer}
	if w.Int != nil {
		lit.Int = Int128{Low: w.Int.Low, High: w.Int.High}
	}
	if w.StringUTF8 != nil {
		runes := make([]rune, len(w.StringUTF8))
		for i, r := range w.StringUTF8 {
			runes[i] = rune(r)
		}
		lit.StringUTF8 = runes
	}
	return lit
}

type wireLocation struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (w wireLocation) toLocation() Location {
	return Location{File: w.File, Line: w.Line, Column: w.Column}
}

// wireExtra carries the handful of Expr.Extra shapes this decoder knows
// about (LetBinding, MatchArm, FunctionCallbackArg), selected by Op the
// same way the generator's own word handlers type-assert Extra. An Expr
// whose Op isn't one of these carries Extra as the decoded string or
// nil, covering var/contract-call? name attachments.
type wireExpr struct {
	Op       string          `json:"op"`
	Args     []wireExpr      `json:"args,omitempty"`
	Type     wireType        `json:"type"`
	Literal  *wireLiteral    `json:"literal,omitempty"`
	Ident    string          `json:"ident,omitempty"`
	Location wireLocation    `json:"location,omitempty"`
	Extra    json.RawMessage `json:"extra,omitempty"`
}

type wireLetBinding struct {
	Names []string   `json:"names"`
	Types []wireType `json:"types"`
	Inits []wireExpr `json:"inits"`
	Body  []wireExpr `json:"body"`
}

type wireMatchArm struct {
	Subject       wireExpr   `json:"subject"`
	SomeOrOkBind  string     `json:"someOrOkBind"`
	SomeOrOkBody  []wireExpr `json:"someOrOkBody"`
	NoneOrErrBind string     `json:"noneOrErrBind"`
	NoneOrErrBody []wireExpr `json:"noneOrErrBody"`
	IsResponse    bool       `json:"isResponse"`
}

type wireFunctionCallbackArg struct {
	FuncName string `json:"funcName"`
}

func (w wireExpr) toExpr() (Expr, error) {
	typ, err := w.Type.toType()
	if err != nil {
		return Expr{}, err
	}
	args := make([]Expr, len(w.Args))
	for i, a := range w.Args {
		e, err := a.toExpr()
		if err != nil {
			return Expr{}, err
		}
		args[i] = e
	}
	extra, err := w.toExtra()
	if err != nil {
		return Expr{}, err
	}
	return Expr{
		Op:       w.Op,
		Args:     args,
		Type:     typ,
		Literal:  w.Literal.toLiteral(),
		Ident:    w.Ident,
		Location: w.Location.toLocation(),
		Extra:    extra,
	}, nil
}

func (w wireExpr) toExtra() (interface{}, error) {
	if len(w.Extra) == 0 {
		return nil, nil
	}
	switch w.Op {
	case "let":
		var wb wireLetBinding
		if err := json.Unmarshal(w.Extra, &wb); err != nil {
			return nil, fmt.Errorf("ast: decode let binding: %w", err)
		}
		types := make([]Type, len(wb.Types))
		for i, t := range wb.Types {
			ty, err := t.toType()
			if err != nil {
				return nil, err
			}
			types[i] = ty
		}
		inits := make([]Expr, len(wb.Inits))
		for i, e := range wb.Inits {
			ex, err := e.toExpr()
			if err != nil {
				return nil, err
			}
			inits[i] = ex
		}
		body, err := toExprs(wb.Body)
		if err != nil {
			return nil, err
		}
		return LetBinding{Names: wb.Names, Types: types, Inits: inits, Body: body}, nil
	case "match":
		var wm wireMatchArm
		if err := json.Unmarshal(w.Extra, &wm); err != nil {
			return nil, fmt.Errorf("ast: decode match arm: %w", err)
		}
		subject, err := wm.Subject.toExpr()
		if err != nil {
			return nil, err
		}
		someBody, err := toExprs(wm.SomeOrOkBody)
		if err != nil {
			return nil, err
		}
		errBody, err := toExprs(wm.NoneOrErrBody)
		if err != nil {
			return nil, err
		}
		return MatchArm{
			Subject:       subject,
			SomeOrOkBind:  wm.SomeOrOkBind,
			SomeOrOkBody:  someBody,
			NoneOrErrBind: wm.NoneOrErrBind,
			NoneOrErrBody: errBody,
			IsResponse:    wm.IsResponse,
		}, nil
	case "filter", "fold", "map":
		var wf wireFunctionCallbackArg
		if err := json.Unmarshal(w.Extra, &wf); err != nil {
			return nil, fmt.Errorf("ast: decode function callback arg: %w", err)
		}
		return FunctionCallbackArg{FuncName: wf.FuncName}, nil
	default:
		// Forms like var-get/var-set/map-get? attach a plain string (the
		// variable or map name) directly.
		var name string
		if err := json.Unmarshal(w.Extra, &name); err != nil {
			return nil, fmt.Errorf("ast: decode extra for op %q: %w", w.Op, err)
		}
		return name, nil
	}
}

func toExprs(ws []wireExpr) ([]Expr, error) {
	out := make([]Expr, len(ws))
	for i, w := range ws {
		e, err := w.toExpr()
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

type wireParam struct {
	Name string   `json:"name"`
	Type wireType `json:"type"`
}

type wireFunction struct {
	Kind       string      `json:"kind"`
	Name       string      `json:"name"`
	Params     []wireParam `json:"params"`
	ReturnType wireType    `json:"returnType"`
	Body       []wireExpr  `json:"body"`
}

func functionKindFromWire(s string) (FunctionKind, error) {
	switch s {
	case "private":
		return FunctionPrivate, nil
	case "public":
		return FunctionPublic, nil
	case "read-only":
		return FunctionReadOnly, nil
	default:
		return 0, fmt.Errorf("ast: unknown function kind %q", s)
	}
}

func (w wireFunction) toFunction() (Function, error) {
	kind, err := functionKindFromWire(w.Kind)
	if err != nil {
		return Function{}, err
	}
	ret, err := w.ReturnType.toType()
	if err != nil {
		return Function{}, err
	}
	params := make([]Param, len(w.Params))
	for i, p := range w.Params {
		pt, err := p.Type.toType()
		if err != nil {
			return Function{}, err
		}
		params[i] = Param{Name: p.Name, Type: pt}
	}
	body, err := toExprs(w.Body)
	if err != nil {
		return Function{}, err
	}
	return Function{Kind: kind, Name: w.Name, Params: params, ReturnType: ret, Body: body}, nil
}

type wireConstant struct {
	Name string   `json:"name"`
	Type wireType `json:"type"`
	Init wireExpr `json:"init"`
}

func (w wireConstant) toConstant() (Constant, error) {
	typ, err := w.Type.toType()
	if err != nil {
		return Constant{}, err
	}
	init, err := w.Init.toExpr()
	if err != nil {
		return Constant{}, err
	}
	return Constant{Name: w.Name, Type: typ, Init: init}, nil
}

type wireDataVar struct {
	Name string   `json:"name"`
	Type wireType `json:"type"`
	Init wireExpr `json:"init"`
}

func (w wireDataVar) toDataVar() (DataVar, error) {
	typ, err := w.Type.toType()
	if err != nil {
		return DataVar{}, err
	}
	init, err := w.Init.toExpr()
	if err != nil {
		return DataVar{}, err
	}
	return DataVar{Name: w.Name, Type: typ, Init: init}, nil
}

type wireMap struct {
	Name    string   `json:"name"`
	KeyType wireType `json:"keyType"`
	ValType wireType `json:"valType"`
}

func (w wireMap) toMap() (Map, error) {
	keyType, err := w.KeyType.toType()
	if err != nil {
		return Map{}, err
	}
	valType, err := w.ValType.toType()
	if err != nil {
		return Map{}, err
	}
	return Map{Name: w.Name, KeyType: keyType, ValType: valType}, nil
}

type wireFungibleToken struct {
	Name        string    `json:"name"`
	TotalSupply *wireExpr `json:"totalSupply,omitempty"`
}

func (w wireFungibleToken) toFungibleToken() (FungibleToken, error) {
	ft := FungibleToken{Name: w.Name}
	if w.TotalSupply != nil {
		e, err := w.TotalSupply.toExpr()
		if err != nil {
			return FungibleToken{}, err
		}
		ft.TotalSupply = &e
	}
	return ft, nil
}

type wireNonFungibleToken struct {
	Name   string   `json:"name"`
	IDType wireType `json:"idType"`
}

func (w wireNonFungibleToken) toNonFungibleToken() (NonFungibleToken, error) {
	idType, err := w.IDType.toType()
	if err != nil {
		return NonFungibleToken{}, err
	}
	return NonFungibleToken{Name: w.Name, IDType: idType}, nil
}

type wireContract struct {
	Constants         []wireConstant         `json:"constants,omitempty"`
	DataVars          []wireDataVar          `json:"dataVars,omitempty"`
	Maps              []wireMap              `json:"maps,omitempty"`
	FungibleTokens    []wireFungibleToken    `json:"fungibleTokens,omitempty"`
	NonFungibleTokens []wireNonFungibleToken `json:"nonFungibleTokens,omitempty"`
	Functions         []wireFunction         `json:"functions,omitempty"`
}

func (w wireContract) toContract() (*Contract, error) {
	c := &Contract{}
	for _, wc := range w.Constants {
		v, err := wc.toConstant()
		if err != nil {
			return nil, err
		}
		c.Constants = append(c.Constants, v)
	}
	for _, wv := range w.DataVars {
		v, err := wv.toDataVar()
		if err != nil {
			return nil, err
		}
		c.DataVars = append(c.DataVars, v)
	}
	for _, wm := range w.Maps {
		v, err := wm.toMap()
		if err != nil {
			return nil, err
		}
		c.Maps = append(c.Maps, v)
	}
	for _, wf := range w.FungibleTokens {
		v, err := wf.toFungibleToken()
		if err != nil {
			return nil, err
		}
		c.FungibleTokens = append(c.FungibleTokens, v)
	}
	for _, wn := range w.NonFungibleTokens {
		v, err := wn.toNonFungibleToken()
		if err != nil {
			return nil, err
		}
		c.NonFungibleTokens = append(c.NonFungibleTokens, v)
	}
	for _, wfn := range w.Functions {
		v, err := wfn.toFunction()
		if err != nil {
			return nil, err
		}
		c.Functions = append(c.Functions, v)
	}
	return c, nil
}
