// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sierra

import (
	"regexp"
	"strconv"
)

// SymbolID identifies a declared element (type, libfunc or function):
// a numeric id plus an optional debug name. Remote contracts strip the
// debug names, leaving only ordinals into the declaration lists.
type SymbolID struct {
	ID        uint64
	DebugName string
}

// Name returns the debug name when present, else the stringified id.
func (s SymbolID) Name() string {
	if s.DebugName != "" {
		return s.DebugName
	}
	return strconv.FormatUint(s.ID, 10)
}

// RefName is the reference form used inside long ids and prototypes:
// the debug name when present, else the bracketed id ("[7]"). The
// bracketed form is what ReplaceTypeIDs later substitutes.
func (s SymbolID) RefName() string {
	if s.DebugName != "" {
		return s.DebugName
	}
	return "[" + strconv.FormatUint(s.ID, 10) + "]"
}

// NameWithFallback returns the debug name when present; otherwise it
// looks the id up by ordinal in declared, an array of names recorded in
// declaration order by a previous rendering pass. When neither is
// available it returns the bracketed id.
func (s SymbolID) NameWithFallback(declared []string) string {
	if s.DebugName != "" {
		return s.DebugName
	}
	if int(s.ID) < len(declared) {
		return declared[s.ID]
	}
	return "[" + strconv.FormatUint(s.ID, 10) + "]"
}

// VarRef references a variable by numeric id, with an optional debug name.
type VarRef struct {
	ID        uint64
	DebugName string
}

// Name returns the display name of the variable: the debug name when
// present, else v<id>.
func (v VarRef) Name() string {
	if v.DebugName != "" {
		return v.DebugName
	}
	return "v" + strconv.FormatUint(v.ID, 10)
}

// raw is the textual-Sierra form of the reference.
func (v VarRef) raw() string {
	if v.DebugName != "" {
		return v.DebugName
	}
	return "[" + strconv.FormatUint(v.ID, 10) + "]"
}

var typeIDPattern = regexp.MustCompile(`\[([0-9]+)\]`)

// ReplaceTypeIDs substitutes every [<n>] token in s with the n-th entry
// of declared, the type names recorded during a previous rendering
// pass. Tokens without a recorded name are left untouched. This is what
// makes libfunc names of remote contracts readable.
func ReplaceTypeIDs(s string, declared []string) string {
	return typeIDPattern.ReplaceAllStringFunc(s, func(tok string) string {
		n, err := strconv.Atoi(tok[1 : len(tok)-1])
		if err != nil || n < 0 || n >= len(declared) {
			return tok
		}
		return declared[n]
	})
}

// VarNames maps a reference list to display names.
func VarNames(vars []VarRef) []string {
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name()
	}
	return names
}
