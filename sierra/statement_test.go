// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sierra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func invocation(name string, branches ...BranchInfo) *Invocation {
	return &Invocation{
		Libfunc:  SymbolID{DebugName: name},
		Args:     []VarRef{{ID: 0}},
		Branches: branches,
	}
}

func TestConditionalBranchFlag(t *testing.T) {
	plain := NewStatement(invocation("store_temp<felt252>",
		BranchInfo{Target: Fallthrough{}, Results: []VarRef{{ID: 1}}}), 0)
	assert.False(t, plain.ConditionalBranch)

	branching := NewStatement(invocation("felt252_is_zero",
		BranchInfo{Target: Fallthrough{}},
		BranchInfo{Target: StatementIdx(8), Results: []VarRef{{ID: 2}}}), 1)
	assert.True(t, branching.ConditionalBranch)

	ret := NewStatement(&Return{Vars: []VarRef{{ID: 0}}}, 2)
	assert.False(t, ret.ConditionalBranch)
}

func TestStatementString(t *testing.T) {
	ret := NewStatement(&Return{Vars: []VarRef{{ID: 3}, {ID: 4}}}, 9)
	assert.Equal(t, "return([3], [4])", ret.String())

	plain := NewStatement(invocation("felt252_add",
		BranchInfo{Target: Fallthrough{}, Results: []VarRef{{ID: 6}}}), 0)
	assert.Equal(t, "felt252_add([0]) -> ([6])", plain.String())

	branching := NewStatement(invocation("felt252_is_zero",
		BranchInfo{Target: Fallthrough{}},
		BranchInfo{Target: StatementIdx(8), Results: []VarRef{{ID: 4}}}), 2)
	assert.Equal(t, "felt252_is_zero([0]) { fallthrough() 8([4]) }", branching.String())
}

func TestLongIDString(t *testing.T) {
	felt := SymbolID{DebugName: "felt252"}
	assert.Equal(t, "felt252<>", LongID{GenericID: "felt252"}.String())
	assert.Equal(t, "NonZero<felt252>",
		LongID{GenericID: "NonZero", Args: []GenericArg{{Type: &felt}}}.String())
}
