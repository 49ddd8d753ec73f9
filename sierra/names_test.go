// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sierra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolIDName(t *testing.T) {
	assert.Equal(t, "felt252", SymbolID{ID: 3, DebugName: "felt252"}.Name())
	assert.Equal(t, "3", SymbolID{ID: 3}.Name())
	assert.Equal(t, "[3]", SymbolID{ID: 3}.RefName())
}

func TestSymbolIDNameWithFallback(t *testing.T) {
	declared := []string{"RangeCheck", "felt252", "Array<felt252>"}

	// Debug names always win.
	assert.Equal(t, "u32", SymbolID{ID: 1, DebugName: "u32"}.NameWithFallback(declared))
	// Stripped ids resolve through the recorded declarations.
	assert.Equal(t, "felt252", SymbolID{ID: 1}.NameWithFallback(declared))
	// Out-of-range ids keep the bracketed form.
	assert.Equal(t, "[7]", SymbolID{ID: 7}.NameWithFallback(declared))
	assert.Equal(t, "[7]", SymbolID{ID: 7}.NameWithFallback(nil))
}

func TestVarRefName(t *testing.T) {
	assert.Equal(t, "v12", VarRef{ID: 12}.Name())
	assert.Equal(t, "balance", VarRef{ID: 12, DebugName: "balance"}.Name())
}

func TestReplaceTypeIDs(t *testing.T) {
	declared := []string{"RangeCheck", "felt252"}

	assert.Equal(t, "store_temp<felt252>", ReplaceTypeIDs("store_temp<[1]>", declared))
	assert.Equal(t, "drop<RangeCheck>", ReplaceTypeIDs("drop<[0]>", declared))
	// Unknown ids survive untouched.
	assert.Equal(t, "dup<[9]>", ReplaceTypeIDs("dup<[9]>", declared))
	assert.Equal(t, "felt252_add", ReplaceTypeIDs("felt252_add", declared))
}
