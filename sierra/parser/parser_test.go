// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("..", "..", "decompiler", "testdata", name))
	require.NoError(t, err)
	return string(content)
}

func TestParseFib(t *testing.T) {
	program, err := Parse(readFixture(t, "fib.sierra"))
	require.NoError(t, err)

	assert.Len(t, program.Types, 3)
	assert.Len(t, program.Libfuncs, 11)
	assert.Len(t, program.Statements, 19)
	require.Len(t, program.Funcs, 1)

	fn := program.Funcs[0]
	assert.Equal(t, "examples::fib::fib", fn.ID.Name())
	assert.Equal(t, 0, fn.EntryPoint)
	require.Len(t, fn.Params, 3)
	assert.Equal(t, "v0", fn.Params[0].Var.Name())
	assert.Equal(t, "felt252", fn.Params[0].Type.Name())
	require.Len(t, fn.RetTypes, 1)
	assert.Equal(t, "felt252", fn.RetTypes[0].Name())
}

func TestParseStatements(t *testing.T) {
	program, err := Parse(readFixture(t, "fib.sierra"))
	require.NoError(t, err)

	// Offset 2: the zero test with a fallthrough and a jump target.
	st := program.Statements[2]
	assert.True(t, st.ConditionalBranch)
	inv, ok := st.Gen.(*sierra.Invocation)
	require.True(t, ok)
	assert.Equal(t, "felt252_is_zero", inv.Libfunc.Name())
	require.Len(t, inv.Branches, 2)
	assert.IsType(t, sierra.Fallthrough{}, inv.Branches[0].Target)
	assert.Equal(t, sierra.StatementIdx(8), inv.Branches[1].Target)
	require.Len(t, inv.Branches[1].Results, 1)
	assert.Equal(t, "v4", inv.Branches[1].Results[0].Name())

	// Offset 7: a return.
	ret, ok := program.Statements[7].Gen.(*sierra.Return)
	require.True(t, ok)
	require.Len(t, ret.Vars, 1)
	assert.Equal(t, "v0", ret.Vars[0].Name())

	// Offsets are dense and equal to statement indexes.
	for i, st := range program.Statements {
		assert.Equal(t, i, st.Offset)
	}
}

func TestParseNestedGenerics(t *testing.T) {
	program, err := Parse(readFixture(t, "fib_array.sierra"))
	require.NoError(t, err)
	assert.Len(t, program.Types, 19)
	assert.Len(t, program.Libfuncs, 42)
	assert.Len(t, program.Funcs, 2)

	// The Option enum nests a user-type tag and two type references.
	var opt *sierra.TypeDeclaration
	for _, decl := range program.Types {
		if decl.ID.Name() == "core::option::Option::<core::box::Box::<@core::felt252>>" {
			opt = decl
		}
	}
	require.NotNil(t, opt)
	assert.Equal(t, "Enum", opt.Long.GenericID)
	require.Len(t, opt.Long.Args, 3)
	assert.NotNil(t, opt.Long.Args[0].UserType)
	require.NotNil(t, opt.Long.Args[1].Type)
	assert.Equal(t, "Box<felt252>", opt.Long.Args[1].Type.Name())

	// Declaration info flags survive parsing.
	rc := program.Types[0]
	require.NotNil(t, rc.Info)
	assert.True(t, rc.Info.Storable)
	assert.False(t, rc.Info.Droppable)
}

func TestParseRemoteStyleIDs(t *testing.T) {
	const program = `
type [0] = felt252;
type [1] = NonZero<[0]>;
libfunc [0] = felt252_is_zero;
libfunc [1] = store_temp<[0]>;

[0]([0]) { fallthrough() 2([1]) };
return([0]);
return([0]);

[0]@0([0]: [0]) -> ([0]);
`
	p, err := Parse(program)
	require.NoError(t, err)
	require.Len(t, p.Types, 2)
	assert.Equal(t, uint64(0), p.Types[0].ID.ID)
	assert.Equal(t, "", p.Types[0].ID.DebugName)
	assert.Equal(t, "felt252<>", p.Types[0].Long.String())
	assert.Equal(t, "NonZero<[0]>", p.Types[1].Long.String())

	inv := p.Statements[0].Gen.(*sierra.Invocation)
	assert.Equal(t, uint64(0), inv.Libfunc.ID)
	assert.Equal(t, "", inv.Libfunc.DebugName)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("type felt252 = felt252")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	_, err = Parse("bogus;\n")
	require.Error(t, err)

	_, err = Parse("f@99([0]: felt252) -> ();\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestLoadContractClass(t *testing.T) {
	const class = `{
  "contract_class_version": "0.1.0",
  "sierra_program": "type felt252 = felt252;\nlibfunc felt252_add = felt252_add;\nfelt252_add([0], [1]) -> ([2]);\nreturn([2]);\nc::c::add@0([0]: felt252, [1]: felt252) -> (felt252);\n",
  "abi": [
    {"type": "function", "name": "add", "state_mutability": "view"},
    {"type": "l1_handler", "name": "handle_deposit"},
    {"type": "interface", "name": "c::IC", "items": [
      {"type": "function", "name": "increase", "state_mutability": "external"}
    ]}
  ]
}`
	program, err := Load([]byte(class))
	require.NoError(t, err)
	require.Len(t, program.Funcs, 1)
	require.NotNil(t, program.ABI)

	kind, ok := program.ABI.Kind("add")
	require.True(t, ok)
	assert.Equal(t, sierra.EntryPointView, kind)
	kind, ok = program.ABI.Kind("handle_deposit")
	require.True(t, ok)
	assert.Equal(t, sierra.EntryPointL1Handler, kind)
	kind, ok = program.ABI.Kind("increase")
	require.True(t, ok)
	assert.Equal(t, sierra.EntryPointExternal, kind)
	_, ok = program.ABI.Kind("missing")
	assert.False(t, ok)
}

func TestLoadRawProgramFallback(t *testing.T) {
	// Non-JSON input is treated as a textual program directly.
	program, err := Load([]byte(readFixture(t, "fib.sierra")))
	require.NoError(t, err)
	assert.Len(t, program.Funcs, 1)
	assert.Nil(t, program.ABI)
}

func TestLoadStringABI(t *testing.T) {
	// Some classes carry the ABI as a JSON-encoded string.
	const class = `{
  "sierra_program": "return();\nc::c::nop@0() -> ();\n",
  "abi": "[{\"type\": \"constructor\", \"name\": \"constructor\"}]"
}`
	program, err := Load([]byte(class))
	require.NoError(t, err)
	require.NotNil(t, program.ABI)
	kind, ok := program.ABI.Kind("constructor")
	require.True(t, ok)
	assert.Equal(t, sierra.EntryPointConstructor, kind)
}
