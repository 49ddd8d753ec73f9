// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decompiler

// This file holds the libfunc name patterns driving every rewrite. All
// regexes are compiled once at process start and are read-only.

import (
	"math/big"
	"regexp"
	"strings"
)

var (
	// Suppressed from the non-verbose output.
	dropPattern      = regexp.MustCompile(`drop(<.*>)?`)
	storeTempPattern = regexp.MustCompile(`store_temp(<.*>)?`)

	// User-defined function call.
	functionCallPattern = regexp.MustCompile(`function_call<(.*)>`)

	// Arithmetic operations over felt252 and the sized integers.
	additionPattern       = regexp.MustCompile(`(felt|u)_?(8|16|32|64|128|252)(_overflowing)?_add`)
	subtractionPattern    = regexp.MustCompile(`(felt|u)_?(8|16|32|64|128|252)(_overflowing)?_sub`)
	multiplicationPattern = regexp.MustCompile(`(felt|u)_?(8|16|32|64|128|252)(_overflowing)?_mul`)

	// Variable duplication.
	dupPattern = regexp.MustCompile(`dup(<.*>)?`)

	// Plain variable assignments.
	variableAssignmentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`rename<.+>`),
		regexp.MustCompile(`store_temp<.+>`),
	}

	// Zero test, the shape the if-rendering keys on.
	isZeroPattern = regexp.MustCompile(`(felt|u)_?(8|16|32|64|128|252)_is_zero`)

	// Constant loads. Each pattern captures the literal as "const".
	constPatterns = []*regexp.Regexp{
		regexp.MustCompile(`const_as_immediate<Const<.+, (?P<const>-?[0-9]+)>>`),
		regexp.MustCompile(`storage_base_address_const<(?P<const>-?[0-9]+)>`),
		regexp.MustCompile(`(felt|u)_?(8|16|32|64|128|252)_const<(?P<const>-?[0-9]+)>`),
	}

	// User-defined function reference, as seen from call sites; used by
	// the call-graph builder and the detectors.
	userDefinedFunctionPattern = regexp.MustCompile(`(function_call|(\[[0-9]+\]))(::)?<user@(?P<function_id>.+)>`)

	// Array declarations and mutations.
	newArrayPattern    = regexp.MustCompile(`array_new<(?P<array_type>.+)>`)
	arrayAppendPattern = regexp.MustCompile(`array_append<(.+)>`)

	// Safe-math wrappers flagged by the rounding-error detector.
	safeMathPatterns = []*regexp.Regexp{
		regexp.MustCompile(`u(8|16|32|64|128|256)_safe_div(mod)?`),
		regexp.MustCompile(`u512_safe_divmod_by_u256`),
	}

	// Storage writes, flagged by the felt-overflow detector.
	storageWritePattern = regexp.MustCompile(`storage_write(_syscall)?`)

	// Housekeeping libfuncs kept out of the call graph.
	irrelevantCallgraphPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^store_temp`),
		regexp.MustCompile(`^drop`),
		regexp.MustCompile(`^dup`),
		regexp.MustCompile(`^rename`),
		regexp.MustCompile(`^branch_align`),
		regexp.MustCompile(`^disable_ap_tracking`),
		regexp.MustCompile(`^enable_ap_tracking`),
		regexp.MustCompile(`^finalize_locals`),
		regexp.MustCompile(`^revoke_ap_tracking`),
		regexp.MustCompile(`^get_builtin_costs`),
		regexp.MustCompile(`^snapshot_take`),
	}
)

// housekeepingLibfuncs are suppressed entirely from non-verbose output.
var housekeepingLibfuncs = map[string]bool{
	"branch_align":        true,
	"disable_ap_tracking": true,
	"enable_ap_tracking":  true,
	"finalize_locals":     true,
	"revoke_ap_tracking":  true,
	"get_builtin_costs":   true,
}

// MatchArithmetic reports whether name is an arithmetic libfunc and
// returns its operator.
func MatchArithmetic(name string) (op string, ok bool) {
	switch {
	case additionPattern.MatchString(name):
		return "+", true
	case subtractionPattern.MatchString(name):
		return "-", true
	case multiplicationPattern.MatchString(name):
		return "*", true
	}
	return "", false
}

// MatchConst extracts the literal of a constant-load libfunc.
func MatchConst(name string) (value string, ok bool) {
	for _, re := range constPatterns {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		for i, sub := range re.SubexpNames() {
			if sub == "const" {
				return m[i], true
			}
		}
	}
	return "", false
}

// MatchUserFunction extracts the function id of a user-defined call
// reference.
func MatchUserFunction(name string) (id string, ok bool) {
	m := userDefinedFunctionPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	for i, sub := range userDefinedFunctionPattern.SubexpNames() {
		if sub == "function_id" {
			return m[i], true
		}
	}
	return "", false
}

// IsZeroTest reports whether name is an integer zero test.
func IsZeroTest(name string) bool { return isZeroPattern.MatchString(name) }

// IsDup reports whether name duplicates a variable.
func IsDup(name string) bool { return dupPattern.MatchString(name) }

// IsSafeMath reports whether name is a safe-math wrapper.
func IsSafeMath(name string) bool {
	for _, re := range safeMathPatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// IsStorageWrite reports whether name writes contract storage.
func IsStorageWrite(name string) bool { return storageWritePattern.MatchString(name) }

// IsIrrelevantForCallgraph reports whether the libfunc is housekeeping
// noise that the call graph leaves out.
func IsIrrelevantForCallgraph(name string) bool {
	for _, re := range irrelevantCallgraphPatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// DecodeConst interprets a decimal constant as big-endian bytes and
// returns the decoded string when every byte is printable ASCII. The
// round trip holds for any printable ASCII string: encoding it as a
// big-endian integer and decoding yields the string back.
func DecodeConst(value string) (string, bool) {
	n, ok := new(big.Int).SetString(value, 10)
	if !ok || n.Sign() <= 0 {
		return "", false
	}
	return decodeBigInt(n)
}

func decodeBigInt(n *big.Int) (string, bool) {
	if n.Sign() <= 0 {
		return "", false
	}
	raw := n.Bytes()
	for _, b := range raw {
		if b < 0x20 || b > 0x7e {
			return "", false
		}
	}
	return string(raw), true
}

// isFunctionAllowed reports whether a libfunc line survives non-verbose
// rendering; verbose keeps everything.
func isFunctionAllowed(name string, verbose bool) bool {
	if verbose {
		return true
	}
	if housekeepingLibfuncs[name] {
		return false
	}
	return !dropPattern.MatchString(name)
}

// joinOperands renders an arithmetic rewrite: operands joined by op.
func joinOperands(params []string, op string) string {
	return strings.Join(params, " "+op+" ")
}
