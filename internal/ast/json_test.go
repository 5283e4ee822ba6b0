package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeContractFull(t *testing.T) {
	data := []byte(`{
		"dataVars": [
			{"name": "count", "type": {"kind": "uint"}, "init": {"op": "", "type": {"kind": "uint"}, "literal": {"int": {"low": 0, "high": 0}}}}
		],
		"maps": [
			{"name": "balances", "keyType": {"kind": "principal"}, "valType": {"kind": "uint"}}
		],
		"fungibleTokens": [{"name": "widget"}],
		"nonFungibleTokens": [{"name": "badge", "idType": {"kind": "uint"}}],
		"functions": [
			{
				"kind": "public",
				"name": "increment",
				"params": [{"name": "by", "type": {"kind": "uint"}}],
				"returnType": {"kind": "response", "ok": {"kind": "bool"}, "err": {"kind": "uint"}},
				"body": [
					{
						"op": "+",
						"type": {"kind": "uint"},
						"args": [
							{"op": "var", "ident": "by", "type": {"kind": "uint"}},
							{"op": "", "type": {"kind": "uint"}, "literal": {"int": {"low": 1, "high": 0}}}
						]
					}
				]
			}
		]
	}`)

	c, err := DecodeContract(data)
	require.NoError(t, err)
	require.Len(t, c.DataVars, 1)
	require.Equal(t, "count", c.DataVars[0].Name)
	require.Equal(t, UintType{}, c.DataVars[0].Type)

	require.Len(t, c.Maps, 1)
	require.Equal(t, PrincipalType{}, c.Maps[0].KeyType)
	require.Equal(t, UintType{}, c.Maps[0].ValType)

	require.Len(t, c.FungibleTokens, 1)
	require.Equal(t, "widget", c.FungibleTokens[0].Name)
	require.Nil(t, c.FungibleTokens[0].TotalSupply)

	require.Len(t, c.NonFungibleTokens, 1)
	require.Equal(t, UintType{}, c.NonFungibleTokens[0].IDType)

	require.Len(t, c.Functions, 1)
	fn := c.Functions[0]
	require.Equal(t, FunctionPublic, fn.Kind)
	require.True(t, fn.Exported())
	require.Equal(t, ResponseType{Ok: BoolType{}, Err: UintType{}}, fn.ReturnType)
	require.Len(t, fn.Body, 1)
	require.Equal(t, "+", fn.Body[0].Op)
	require.Len(t, fn.Body[0].Args, 2)
	require.Equal(t, "by", fn.Body[0].Args[0].Ident)
	require.EqualValues(t, 1, fn.Body[0].Args[1].Literal.Int.Low)
}

func TestDecodeContractCompositeTypes(t *testing.T) {
	data := []byte(`{
		"constants": [{
			"name": "limits",
			"type": {
				"kind": "tuple",
				"fields": [
					{"key": "max", "type": {"kind": "uint"}},
					{"key": "owner", "type": {"kind": "principal"}},
					{"key": "tag", "type": {"kind": "optional", "some": {"kind": "buffer", "max": 8}}}
				]
			},
			"init": {"op": "tuple", "type": {"kind": "tuple", "fields": [
				{"key": "max", "type": {"kind": "uint"}},
				{"key": "owner", "type": {"kind": "principal"}},
				{"key": "tag", "type": {"kind": "optional", "some": {"kind": "buffer", "max": 8}}}
			]}}
		}]
	}`)

	c, err := DecodeContract(data)
	require.NoError(t, err)
	require.Len(t, c.Constants, 1)

	tupleTy, ok := c.Constants[0].Type.(TupleType)
	require.True(t, ok)
	require.Len(t, tupleTy.Fields, 3)
	require.Equal(t, UintType{}, tupleTy.Fields[0].Type)
	require.Equal(t, PrincipalType{}, tupleTy.Fields[1].Type)
	require.Equal(t, OptionalType{Some: BufferType{Max: 8}}, tupleTy.Fields[2].Type)
}

func TestDecodeContractListType(t *testing.T) {
	data := []byte(`{
		"dataVars": [{
			"name": "members",
			"type": {"kind": "list", "max": 5, "elem": {"kind": "principal"}},
			"init": {"op": "list", "type": {"kind": "list", "max": 5, "elem": {"kind": "principal"}}}
		}]
	}`)
	c, err := DecodeContract(data)
	require.NoError(t, err)
	listTy, ok := c.DataVars[0].Type.(ListType)
	require.True(t, ok)
	require.Equal(t, 5, listTy.Max)
	require.Equal(t, PrincipalType{}, listTy.Elem)
}

func TestDecodeContractLetBindingExtra(t *testing.T) {
	data := []byte(`{
		"functions": [{
			"kind": "private",
			"name": "helper",
			"params": [],
			"returnType": {"kind": "uint"},
			"body": [{
				"op": "let",
				"type": {"kind": "uint"},
				"extra": {
					"names": ["x"],
					"types": [{"kind": "uint"}],
					"inits": [{"op": "", "type": {"kind": "uint"}, "literal": {"int": {"low": 3, "high": 0}}}],
					"body": [{"op": "var", "ident": "x", "type": {"kind": "uint"}}]
				}
			}]
		}]
	}`)
	c, err := DecodeContract(data)
	require.NoError(t, err)
	require.Len(t, c.Functions, 1)
	letExpr := c.Functions[0].Body[0]
	require.Equal(t, "let", letExpr.Op)
	lb, ok := letExpr.Extra.(LetBinding)
	require.True(t, ok)
	require.Equal(t, []string{"x"}, lb.Names)
	require.Len(t, lb.Inits, 1)
	require.Len(t, lb.Body, 1)
}

func TestDecodeContractVarGetExtraString(t *testing.T) {
	data := []byte(`{
		"functions": [{
			"kind": "read-only",
			"name": "getCount",
			"params": [],
			"returnType": {"kind": "uint"},
			"body": [{"op": "var-get", "type": {"kind": "uint"}, "extra": "count"}]
		}]
	}`)
	c, err := DecodeContract(data)
	require.NoError(t, err)
	e := c.Functions[0].Body[0]
	require.Equal(t, "count", e.Extra)
}

func TestDecodeContractMatchArmExtra(t *testing.T) {
	data := []byte(`{
		"functions": [{
			"kind": "private",
			"name": "unwrapOr",
			"params": [],
			"returnType": {"kind": "uint"},
			"body": [{
				"op": "match",
				"type": {"kind": "uint"},
				"extra": {
					"subject": {"op": "none", "type": {"kind": "optional", "some": {"kind": "uint"}}},
					"someOrOkBind": "v",
					"someOrOkBody": [{"op": "var", "ident": "v", "type": {"kind": "uint"}}],
					"noneOrErrBind": "",
					"noneOrErrBody": [{"op": "", "type": {"kind": "uint"}, "literal": {"int": {"low": 0, "high": 0}}}],
					"isResponse": false
				}
			}]
		}]
	}`)
	c, err := DecodeContract(data)
	require.NoError(t, err)
	matchExpr := c.Functions[0].Body[0]
	arm, ok := matchExpr.Extra.(MatchArm)
	require.True(t, ok)
	require.Equal(t, "v", arm.SomeOrOkBind)
	require.False(t, arm.IsResponse)
	require.Equal(t, "none", arm.Subject.Op)
}

func TestDecodeContractInvalidJSONFails(t *testing.T) {
	_, err := DecodeContract([]byte(`{not valid json`))
	require.Error(t, err)
}

func TestDecodeContractUnknownTypeKindFails(t *testing.T) {
	data := []byte(`{
		"dataVars": [{"name": "x", "type": {"kind": "not-a-real-kind"}, "init": {"op": ""}}]
	}`)
	_, err := DecodeContract(data)
	require.Error(t, err)
}

func TestDecodeContractUnknownFunctionKindFails(t *testing.T) {
	data := []byte(`{
		"functions": [{"kind": "bogus", "name": "f", "params": [], "returnType": {"kind": "uint"}, "body": []}]
	}`)
	_, err := DecodeContract(data)
	require.Error(t, err)
}

func TestDecodeContractEmptyObjectYieldsEmptyContract(t *testing.T) {
	c, err := DecodeContract([]byte(`{}`))
	require.NoError(t, err)
	require.Empty(t, c.Constants)
	require.Empty(t, c.DataVars)
	require.Empty(t, c.Maps)
	require.Empty(t, c.Functions)
}
