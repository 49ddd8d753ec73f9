// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parser turns textual Sierra programs (and the contract-class
// JSON wrapping them) into the sierra IR model.
package parser

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

var (
	typeInfoPattern = regexp.MustCompile(
		`^(.*?) \[storable: (true|false), drop: (true|false), dup: (true|false), zero_sized: (true|false)\]$`)
	funcDeclPattern = regexp.MustCompile(`^(.+)@([0-9]+)\((.*)\) -> \((.*)\)$`)
	returnPattern   = regexp.MustCompile(`^return\((.*)\)$`)
	branchPattern   = regexp.MustCompile(`(fallthrough|[0-9]+)\(([^()]*)\)`)
	varRefPattern   = regexp.MustCompile(`^\[([0-9]+)\]$`)
)

type parser struct {
	program      *sierra.Program
	typeIndex    map[string]uint64
	libfuncIndex map[string]uint64
	nextLibfunc  uint64
}

// Parse parses a textual Sierra program. Declarations and statements
// may be interleaved with blank lines and // comments; statement
// offsets follow encounter order.
func Parse(content string) (*sierra.Program, error) {
	p := &parser{
		program:      &sierra.Program{},
		typeIndex:    make(map[string]uint64),
		libfuncIndex: make(map[string]uint64),
	}

	for lineno, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if !strings.HasSuffix(line, ";") {
			return nil, errors.Errorf("line %d: missing terminating ';': %s", lineno+1, line)
		}
		line = strings.TrimSuffix(line, ";")

		var err error
		switch {
		case strings.HasPrefix(line, "type "):
			err = p.parseTypeDecl(strings.TrimPrefix(line, "type "))
		case strings.HasPrefix(line, "libfunc "):
			err = p.parseLibfuncDecl(strings.TrimPrefix(line, "libfunc "))
		case funcDeclPattern.MatchString(line):
			err = p.parseFuncDecl(line)
		default:
			err = p.parseStatement(line)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineno+1)
		}
	}

	for _, fn := range p.program.Funcs {
		if fn.EntryPoint < 0 || fn.EntryPoint > len(p.program.Statements) {
			return nil, errors.Errorf("function %s: entry point %d out of range",
				fn.ID.Name(), fn.EntryPoint)
		}
	}
	return p.program, nil
}

func (p *parser) parseTypeDecl(rest string) error {
	idStr, longStr, ok := cutTopLevel(rest, " = ")
	if !ok {
		return errors.Errorf("malformed type declaration: %s", rest)
	}

	var info *sierra.DeclaredTypeInfo
	if m := typeInfoPattern.FindStringSubmatch(longStr); m != nil {
		longStr = m[1]
		info = &sierra.DeclaredTypeInfo{
			Storable:     m[2] == "true",
			Droppable:    m[3] == "true",
			Duplicatable: m[4] == "true",
			ZeroSized:    m[5] == "true",
		}
	}

	ordinal := uint64(len(p.program.Types))
	id := p.symbolID(idStr, ordinal)
	if id.DebugName != "" {
		p.typeIndex[id.DebugName] = ordinal
	}
	p.program.Types = append(p.program.Types, &sierra.TypeDeclaration{
		ID:   id,
		Long: p.parseLongID(longStr),
		Info: info,
	})
	return nil
}

func (p *parser) parseLibfuncDecl(rest string) error {
	idStr, longStr, ok := cutTopLevel(rest, " = ")
	if !ok {
		return errors.Errorf("malformed libfunc declaration: %s", rest)
	}

	ordinal := uint64(len(p.program.Libfuncs))
	id := p.symbolID(idStr, ordinal)
	if id.DebugName != "" {
		p.libfuncIndex[id.DebugName] = ordinal
	}
	p.nextLibfunc = ordinal + 1
	p.program.Libfuncs = append(p.program.Libfuncs, &sierra.LibfuncDeclaration{
		ID:   id,
		Long: p.parseLongID(longStr),
	})
	return nil
}

func (p *parser) parseFuncDecl(line string) error {
	m := funcDeclPattern.FindStringSubmatch(line)
	entry, err := strconv.Atoi(m[2])
	if err != nil {
		return errors.Wrap(err, "entry point")
	}

	decl := &sierra.FuncDeclaration{
		ID:         p.symbolID(m[1], uint64(len(p.program.Funcs))),
		EntryPoint: entry,
	}
	for _, part := range splitTopLevel(m[3], ',') {
		nameStr, typeStr, ok := strings.Cut(part, ": ")
		if !ok {
			return errors.Errorf("malformed parameter %q", part)
		}
		decl.Params = append(decl.Params, sierra.Param{
			Var:  p.varRef(strings.TrimSpace(nameStr)),
			Type: p.typeRef(strings.TrimSpace(typeStr)),
		})
	}
	for _, part := range splitTopLevel(m[4], ',') {
		decl.RetTypes = append(decl.RetTypes, p.typeRef(strings.TrimSpace(part)))
	}
	p.program.Funcs = append(p.program.Funcs, decl)
	return nil
}

func (p *parser) parseStatement(line string) error {
	offset := len(p.program.Statements)

	if m := returnPattern.FindStringSubmatch(line); m != nil {
		ret := &sierra.Return{Vars: p.varList(m[1])}
		p.program.Statements = append(p.program.Statements, sierra.NewStatement(ret, offset))
		return nil
	}

	open := indexTopLevel(line, '(')
	if open < 0 {
		return errors.Errorf("malformed statement: %s", line)
	}
	name := line[:open]
	end := matchingParen(line, open)
	if end < 0 {
		return errors.Errorf("unbalanced parentheses: %s", line)
	}
	inv := &sierra.Invocation{
		Libfunc: p.libfuncRef(name),
		Args:    p.varList(line[open+1 : end]),
	}

	rest := strings.TrimSpace(line[end+1:])
	switch {
	case strings.HasPrefix(rest, "-> ("):
		inner := strings.TrimSuffix(strings.TrimPrefix(rest, "-> ("), ")")
		inv.Branches = []sierra.BranchInfo{{
			Target:  sierra.Fallthrough{},
			Results: p.varList(inner),
		}}
	case strings.HasPrefix(rest, "{") && strings.HasSuffix(rest, "}"):
		for _, m := range branchPattern.FindAllStringSubmatch(rest, -1) {
			branch := sierra.BranchInfo{Results: p.varList(m[2])}
			if m[1] == "fallthrough" {
				branch.Target = sierra.Fallthrough{}
			} else {
				idx, err := strconv.Atoi(m[1])
				if err != nil {
					return errors.Wrap(err, "branch target")
				}
				branch.Target = sierra.StatementIdx(idx)
			}
			inv.Branches = append(inv.Branches, branch)
		}
		if len(inv.Branches) == 0 {
			return errors.Errorf("invocation with empty branch list: %s", line)
		}
	default:
		return errors.Errorf("malformed statement tail %q", rest)
	}

	p.program.Statements = append(p.program.Statements, sierra.NewStatement(inv, offset))
	return nil
}

// symbolID builds the id of a declaration-position identifier: the
// bracketed form carries an explicit id, anything else is a debug name
// whose id is the ordinal.
func (p *parser) symbolID(s string, ordinal uint64) sierra.SymbolID {
	if m := varRefPattern.FindStringSubmatch(s); m != nil {
		id, _ := strconv.ParseUint(m[1], 10, 64)
		return sierra.SymbolID{ID: id}
	}
	return sierra.SymbolID{ID: ordinal, DebugName: s}
}

// typeRef resolves a type name used in reference position against the
// declared types.
func (p *parser) typeRef(s string) sierra.SymbolID {
	if m := varRefPattern.FindStringSubmatch(s); m != nil {
		id, _ := strconv.ParseUint(m[1], 10, 64)
		return sierra.SymbolID{ID: id}
	}
	id := p.typeIndex[s]
	return sierra.SymbolID{ID: id, DebugName: s}
}

// libfuncRef resolves a libfunc name used at an invocation site.
// Unknown names (legal: declarations are not verified) get fresh ids.
func (p *parser) libfuncRef(s string) sierra.SymbolID {
	if m := varRefPattern.FindStringSubmatch(s); m != nil {
		id, _ := strconv.ParseUint(m[1], 10, 64)
		return sierra.SymbolID{ID: id}
	}
	if id, ok := p.libfuncIndex[s]; ok {
		return sierra.SymbolID{ID: id, DebugName: s}
	}
	id := p.nextLibfunc
	p.nextLibfunc++
	return sierra.SymbolID{ID: id, DebugName: s}
}

func (p *parser) varRef(s string) sierra.VarRef {
	if m := varRefPattern.FindStringSubmatch(s); m != nil {
		id, _ := strconv.ParseUint(m[1], 10, 64)
		return sierra.VarRef{ID: id}
	}
	return sierra.VarRef{DebugName: s}
}

func (p *parser) varList(s string) []sierra.VarRef {
	var vars []sierra.VarRef
	for _, part := range splitTopLevel(s, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		vars = append(vars, p.varRef(part))
	}
	return vars
}

// parseLongID parses a generic long id: a family name optionally
// applied to comma-separated generic arguments.
func (p *parser) parseLongID(s string) sierra.LongID {
	open := strings.IndexByte(s, '<')
	if open < 0 || !strings.HasSuffix(s, ">") {
		return sierra.LongID{GenericID: s}
	}
	long := sierra.LongID{GenericID: s[:open]}
	for _, arg := range splitTopLevel(s[open+1:len(s)-1], ',') {
		long.Args = append(long.Args, p.parseGenericArg(strings.TrimSpace(arg)))
	}
	return long
}

func (p *parser) parseGenericArg(s string) sierra.GenericArg {
	switch {
	case strings.HasPrefix(s, "ut@"):
		id := p.symbolRefArg(strings.TrimPrefix(s, "ut@"))
		return sierra.GenericArg{UserType: &id}
	case strings.HasPrefix(s, "user@"):
		id := p.symbolRefArg(strings.TrimPrefix(s, "user@"))
		return sierra.GenericArg{UserFunc: &id}
	}
	if v, ok := new(big.Int).SetString(s, 10); ok {
		return sierra.GenericArg{Value: v}
	}
	id := p.typeRef(s)
	return sierra.GenericArg{Type: &id}
}

func (p *parser) symbolRefArg(s string) sierra.SymbolID {
	if m := varRefPattern.FindStringSubmatch(s); m != nil {
		id, _ := strconv.ParseUint(m[1], 10, 64)
		return sierra.SymbolID{ID: id}
	}
	return sierra.SymbolID{DebugName: s}
}

// cutTopLevel splits s around the first occurrence of sep found at
// angle-bracket depth zero.
func cutTopLevel(s, sep string) (before, after string, found bool) {
	depth := 0
	for i := 0; i+len(sep) <= len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		}
		if depth == 0 && strings.HasPrefix(s[i:], sep) {
			return s[:i], s[i+len(sep):], true
		}
	}
	return s, "", false
}

// splitTopLevel splits on sep, ignoring separators nested in angle
// brackets, parentheses or square brackets.
func splitTopLevel(s string, sep byte) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// indexTopLevel returns the index of the first occurrence of c outside
// angle brackets.
func indexTopLevel(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		}
		if depth == 0 && s[i] == c {
			return i
		}
	}
	return -1
}

// matchingParen returns the index of the parenthesis closing the one at
// open, or -1.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
