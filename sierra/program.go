// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sierra defines the in-memory model of a Sierra program: the
// ordered type, libfunc and function declarations, the flat statement
// list, and the naming rules shared by every analysis.
//
// A Program is immutable after construction; analyses annotate their own
// structures (see the decompiler and cfg packages) instead of mutating it.
package sierra

import (
	"math/big"
	"strings"
)

// Program is a parsed Sierra program.
type Program struct {
	// Declarations, in source order. Numeric ids are ordinals into
	// these slices when debug names have been stripped.
	Types    []*TypeDeclaration
	Libfuncs []*LibfuncDeclaration
	Funcs    []*FuncDeclaration

	// Statements is the flat program body. Offsets are dense and equal
	// to the statement's index.
	Statements []*Statement

	// ABI carries the externally declared entry points when the program
	// came from a contract class. Nil for raw Sierra files.
	ABI *ABI
}

// TypeDeclaration declares a concrete type: an identifier bound to a
// generic long id, plus optional declared-type-info flags.
type TypeDeclaration struct {
	ID   SymbolID
	Long LongID
	Info *DeclaredTypeInfo
}

// LibfuncDeclaration declares a concrete library function.
type LibfuncDeclaration struct {
	ID   SymbolID
	Long LongID
}

// DeclaredTypeInfo mirrors the bracketed flag list of a type declaration.
type DeclaredTypeInfo struct {
	Storable     bool
	Droppable    bool
	Duplicatable bool
	ZeroSized    bool
}

// FuncDeclaration declares a user function: its identifier, entry-point
// statement index, parameter list and return types.
type FuncDeclaration struct {
	ID         SymbolID
	EntryPoint int
	Params     []Param
	RetTypes   []SymbolID
}

// Param is a single function parameter: a variable bound to a type.
type Param struct {
	Var  VarRef
	Type SymbolID
}

// ParamTypes returns the ordered parameter types of the signature.
func (f *FuncDeclaration) ParamTypes() []SymbolID {
	types := make([]SymbolID, len(f.Params))
	for i, p := range f.Params {
		types[i] = p.Type
	}
	return types
}

// LongID is a generic family name applied to zero or more generic
// arguments, e.g. store_temp<felt252> or Const<felt252, 1>.
type LongID struct {
	GenericID string
	Args      []GenericArg
}

// String renders the long id the way the Sierra textual format does.
// A family with no arguments renders with empty brackets (felt252<>),
// matching the declaration output of the Cairo toolchain.
func (l LongID) String() string {
	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		args[i] = a.String()
	}
	return l.GenericID + "<" + strings.Join(args, ", ") + ">"
}

// GenericArg is one argument of a long id. Exactly one field is set:
// a nested type reference, a user-type tag, a user-function tag, or a
// literal value.
type GenericArg struct {
	Type     *SymbolID
	UserType *SymbolID
	UserFunc *SymbolID
	Value    *big.Int
}

func (a GenericArg) String() string {
	switch {
	case a.UserType != nil:
		return "ut@" + a.UserType.RefName()
	case a.UserFunc != nil:
		return "user@" + a.UserFunc.RefName()
	case a.Type != nil:
		return a.Type.RefName()
	case a.Value != nil:
		return a.Value.String()
	}
	return ""
}
