// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detectors_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
	"github.com/FuzzingLabs/sierra-analyzer/detectors"
	"github.com/FuzzingLabs/sierra-analyzer/sierra/parser"
)

func loadFixture(t *testing.T, name string) *decompiler.Decompiler {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("..", "decompiler", "testdata", name))
	require.NoError(t, err)
	program, err := parser.Parse(string(content))
	require.NoError(t, err)
	d := decompiler.New(program, false)
	d.Decompile(false)
	return d
}

func TestStringsDetector(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra")
	det := &detectors.StringsDetector{}

	assert.Equal(t, "Index out of bounds\nu32_sub Overflow", det.Detect(d))
}

func TestStatisticsDetector(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra")
	det := &detectors.StatisticsDetector{}

	assert.Equal(t, "Libfuncs: 42\nTypes: 19\nFunctions: 2", det.Detect(d))
}

func TestFunctionsDetector(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra")
	det := &detectors.FunctionsDetector{}

	assert.Equal(t, "Private : examples::fib_array::fib\nPrivate : examples::fib_array::fib_inner",
		det.Detect(d))
}

func TestPrototypesDetector(t *testing.T) {
	d := loadFixture(t, "fib.sierra")
	det := &detectors.PrototypesDetector{}

	assert.Equal(t,
		"func examples::fib::fib (v0: felt252, v1: felt252, v2: felt252) -> (felt252)",
		det.Detect(d))
}

func TestL1HandlerDetector(t *testing.T) {
	const program = `
type felt252 = felt252;
libfunc store_temp<felt252> = store_temp<felt252>;

store_temp<felt252>([1]) -> ([2]);
return([2]);

contract::c::__l1_handler__deposit@0([0]: felt252, [1]: felt252) -> (felt252);
`
	p, err := parser.Parse(program)
	require.NoError(t, err)
	d := decompiler.New(p, false)
	d.Decompile(false)

	det := &detectors.L1HandlerDetector{}
	assert.Equal(t, "contract::c::__l1_handler__deposit", det.Detect(d))
}

func TestFeltOverflowDetector(t *testing.T) {
	d := loadFixture(t, "fib.sierra")
	det := &detectors.FeltOverflowDetector{}

	out := det.Detect(d)
	// felt252_add(v0, v5) and felt252_sub(v2, v7) both touch felt252
	// parameters of the enclosing function.
	assert.Contains(t, out,
		"examples::fib::fib: parameters v0 could be used to trigger a felt overflow/underflow (Confidence: High)")
	assert.Contains(t, out,
		"examples::fib::fib: parameters v2 could be used to trigger a felt overflow/underflow (Confidence: High)")
}

func TestRoundingErrorDetector(t *testing.T) {
	const program = `
type u256 = u256;
libfunc u256_safe_divmod = u256_safe_divmod;

u256_safe_divmod([0], [1]) -> ([2], [3]);
return([2]);

math::div::compute_share@0([0]: u256, [1]: u256) -> (u256);
`
	p, err := parser.Parse(program)
	require.NoError(t, err)
	d := decompiler.New(p, false)
	d.Decompile(false)

	det := &detectors.RoundingErrorDetector{}
	assert.Equal(t,
		"math::div::compute_share function could be vulnerable to a rounding error",
		det.Detect(d))

	// No finding on safe-math-free programs.
	clean := loadFixture(t, "fib.sierra")
	assert.Empty(t, det.Detect(clean))
}

func TestControlledLibraryCallDetectorIsSilent(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra")
	det := &detectors.ControlledLibraryCallDetector{}
	assert.Empty(t, det.Detect(d))
}

func TestRegistry(t *testing.T) {
	all := detectors.All()
	require.NotEmpty(t, all)

	seen := map[string]bool{}
	for _, det := range all {
		assert.NotEmpty(t, det.ID())
		assert.NotEmpty(t, det.Name())
		assert.NotEmpty(t, det.Description())
		assert.False(t, seen[det.ID()], "duplicate id %s", det.ID())
		seen[det.ID()] = true
	}
	for _, id := range []string{"functions", "prototypes", "statistics", "strings",
		"l1_handler", "felt_overflow", "rounding", "controlled_library_call", "inputs"} {
		assert.True(t, seen[id], id)
	}
}

func TestRunAllFormatting(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra")

	out := detectors.RunAll(d, []string{"statistics"})
	assert.Equal(t,
		"[Informational] Statistics\n\t- Libfuncs: 42\n\t- Types: 19\n\t- Functions: 2", out)
}

func TestRunAllSkipsEmptyDetectors(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra")

	// The L1-handler detector finds nothing here, so its header must
	// not appear.
	out := detectors.RunAll(d, []string{"l1_handler", "statistics"})
	assert.NotContains(t, out, "[Informational] L1 Handler")
	assert.Contains(t, out, "[Informational] Statistics")
}

func TestRunAllSelection(t *testing.T) {
	d := loadFixture(t, "fib_array.sierra")

	out := detectors.RunAll(d, []string{"strings"})
	assert.True(t, strings.HasPrefix(out, "[Informational] Strings"))
	assert.NotContains(t, out, "Statistics")
}
