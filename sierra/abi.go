// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sierra

// EntryPointKind classifies an externally declared entry point.
type EntryPointKind string

const (
	EntryPointExternal    EntryPointKind = "external"
	EntryPointView        EntryPointKind = "view"
	EntryPointConstructor EntryPointKind = "constructor"
	EntryPointL1Handler   EntryPointKind = "l1_handler"
	EntryPointEvent       EntryPointKind = "event"
	EntryPointStorage     EntryPointKind = "storage"
)

// EntryPoint is one externally declared entry point of a contract ABI.
type EntryPoint struct {
	Name string
	Kind EntryPointKind
}

// ABI is the flattened list of entry points declared by a contract
// class, used to classify the program's functions.
type ABI struct {
	EntryPoints []EntryPoint
}

// Kind looks up an entry point by its unqualified name. Sierra function
// ids are fully qualified paths; callers match the trailing segment.
func (a *ABI) Kind(name string) (EntryPointKind, bool) {
	if a == nil {
		return "", false
	}
	for _, ep := range a.EntryPoints {
		if ep.Name == name {
			return ep.Kind, true
		}
	}
	return "", false
}
