// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decompiler

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FuzzingLabs/sierra-analyzer/sierra/parser"
)

func loadFixture(t *testing.T, name string, verbose bool) *Decompiler {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	program, err := parser.Parse(string(content))
	require.NoError(t, err)
	return New(program, verbose)
}

const fibDecompiled = `// Function 1
func examples::fib::fib (v0: felt252, v1: felt252, v2: felt252) -> (felt252) {
	v3 = v2
	if (v3 == 0) {
		v5 = v1
		v6 = v0 + v5
		v7 = 1
		v8 = v2 - v7
		v9 = user@examples::fib::fib(v1, v6, v8)
		return (v9)
	} else {
		return (v0)
	}
}`

func TestDecompileFib(t *testing.T) {
	d := loadFixture(t, "fib.sierra", false)
	out := d.Decompile(false)

	sections := strings.SplitN(out, "\n\n", 3)
	require.Len(t, sections, 3)

	assert.Equal(t, `type felt252 = felt252<> [storable: true, drop: true, dup: true, zero_sized: false]
type NonZero<felt252> = NonZero<felt252> [storable: true, drop: true, dup: true, zero_sized: false]
type Const<felt252, 1> = Const<felt252, 1> [storable: false, drop: false, dup: false, zero_sized: false]`, sections[0])

	assert.Equal(t, `libfunc disable_ap_tracking = disable_ap_tracking<>
libfunc dup<felt252> = dup<felt252>
libfunc felt252_is_zero = felt252_is_zero<>
libfunc branch_align = branch_align<>
libfunc drop<felt252> = drop<felt252>
libfunc store_temp<felt252> = store_temp<felt252>
libfunc drop<NonZero<felt252>> = drop<NonZero<felt252>>
libfunc felt252_add = felt252_add<>
libfunc const_as_immediate<Const<felt252, 1>> = const_as_immediate<Const<felt252, 1>>
libfunc felt252_sub = felt252_sub<>
libfunc function_call<user@examples::fib::fib> = function_call<user@examples::fib::fib>`, sections[1])

	assert.Equal(t, fibDecompiled, sections[2])
}

func TestDecompileFibVerbose(t *testing.T) {
	d := loadFixture(t, "fib.sierra", true)
	out := d.Decompile(false)

	// Suppressed libfuncs come back in verbose mode.
	assert.Contains(t, out, "\tdisable_ap_tracking()\n")
	assert.Contains(t, out, "\t\tdrop<felt252>(v1)\n")
	assert.Contains(t, out, "\t\tdrop<NonZero<felt252>>(v4)\n")
	assert.Contains(t, out, "\t\tv1 = store_temp<felt252>(v1)\n")
	assert.Contains(t, out, "\t\tv7 = const_as_immediate<Const<felt252, 1>>()\n")
	assert.Contains(t, out, "\tv2, v3 = dup<felt252>(v2)\n")

	// The rewrites that aid readability still apply.
	assert.Contains(t, out, "v9 = user@examples::fib::fib(v1, v6, v8)")
	assert.Contains(t, out, "if (v3 == 0) {")
}

func TestDecompileDeterministic(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra", false)
	first := d.Decompile(false)
	second := d.Decompile(false)
	assert.Equal(t, first, second)

	fresh := loadFixture(t, "fib_array.sierra", false)
	assert.Equal(t, first, fresh.Decompile(false))
}

func TestPrototypes(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra", false)
	d.Decompile(false)

	assert.Equal(t, `func examples::fib_array::fib (v0: RangeCheck, v1: u32) -> (RangeCheck, core::panics::PanicResult::<(core::array::Array::<core::felt252>, ())>)
func examples::fib_array::fib_inner (v0: RangeCheck, v1: u32, v2: Array<felt252>) -> (RangeCheck, core::panics::PanicResult::<(core::array::Array::<core::felt252>, ())>)`,
		d.DecompileFunctionsPrototypes())

	fib := d.Functions[0]
	assert.Equal(t, []Argument{{Name: "v0", Type: "RangeCheck"}, {Name: "v1", Type: "u32"}}, fib.Arguments)
}

func TestFunctionOffsets(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra", false)
	d.Decompile(false)

	require.Len(t, d.Functions, 2)
	fib, inner := d.Functions[0], d.Functions[1]
	assert.Equal(t, 0, fib.StartOffset)
	assert.Equal(t, 6, fib.EndOffset)
	assert.Equal(t, 7, inner.StartOffset)
	assert.Equal(t, 57, inner.EndOffset)
	assert.Len(t, fib.Statements, 7)
	assert.Len(t, inner.Statements, 51)
}

func TestFilterFunctions(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra", false)
	d.Decompile(false)

	d.FilterFunctions("fib_inner")
	require.Len(t, d.Functions, 1)
	assert.Equal(t, "examples::fib_array::fib_inner", d.Functions[0].Name())
}

// Every rendered block shows up exactly once: output size stays linear
// in statement count even with convergent control flow.
func TestRendererVisitsBlocksOnce(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra", false)
	out := d.Decompile(false)

	// The u32_sub panic tail is reached from two overflowing
	// subtractions; each panic-tail string constant must be printed a
	// single time.
	assert.Equal(t, 1, strings.Count(out, `// "u32_sub Overflow"`))
	assert.Equal(t, 1, strings.Count(out, `// "Index out of bounds"`))
}

func TestDecodeConstRoundTrip(t *testing.T) {
	for _, s := range []string{"Out of gas", "Index out of bounds", "u32_sub Overflow", "a"} {
		encoded := new(big.Int).SetBytes([]byte(s))
		decoded, ok := DecodeConst(encoded.String())
		require.True(t, ok, s)
		assert.Equal(t, s, decoded)
	}

	// Known encoding of "Out of gas".
	decoded, ok := DecodeConst("375233589013918064796019")
	require.True(t, ok)
	assert.Equal(t, "Out of gas", decoded)

	for _, bad := range []string{"1", "0", "-5", "256"} {
		_, ok := DecodeConst(bad)
		assert.False(t, ok, bad)
	}
}

// A remote program strips every debug name; the declared-name arrays
// recorded on the first pass make the rendering readable anyway.
func TestRemoteNamingFallback(t *testing.T) {
	const remote = `
type [0] = felt252;
type [1] = NonZero<[0]>;
libfunc [0] = store_temp<[0]>;
libfunc [1] = felt252_add;

[1]([0], [1]) -> ([2]);
[0]([2]) -> ([3]);
return([3]);

[0]@0([0]: [0], [1]: [0]) -> ([0]);
`
	program, err := parser.Parse(remote)
	require.NoError(t, err)
	d := New(program, false)
	out := d.Decompile(false)

	assert.Equal(t, []string{"felt252", "NonZero<[0]>"}, d.DeclaredTypesNames)
	assert.Equal(t, []string{"store_temp<[0]>", "felt252_add"}, d.DeclaredLibfuncsNames)

	// Types resolve through the recorded names in prototypes and in
	// libfunc generic arguments alike.
	assert.Contains(t, out, "func 0 (v0: felt252, v1: felt252) -> (felt252)")
	assert.Contains(t, out, "\tv2 = v0 + v1\n")
	assert.Contains(t, out, "\tv3 = v2\n")
}

func TestClassifyFunction(t *testing.T) {
	cases := []struct {
		name string
		want FunctionType
	}{
		{"core::felt252_add", FunctionTypeCore},
		{"examples::fib::fib", FunctionTypePrivate},
		{"contract::c::balance::__member_module_balance::read", FunctionTypeStorage},
		{"contract::c::__wrapper__Impl__increase", FunctionTypeWrapper},
		{"contract::c::__l1_handler__deposit", FunctionTypeL1Handler},
		{"contract::c::IOtherDispatcherImpl::call_other", FunctionTypeAbiCallContract},
		{"contract::c::IOtherLibraryDispatcherImpl::call_other", FunctionTypeAbiLibraryCall},
		{"contract::c::fib[expr16]", FunctionTypeLoop},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyFunction(tc.name, nil), tc.name)
	}
}
