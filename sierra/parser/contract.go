// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parser

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

// ContractClass is the subset of a Starknet contract-class JSON the
// analyzer consumes.
type ContractClass struct {
	SierraProgram        json.RawMessage `json:"sierra_program"`
	ContractClassVersion string          `json:"contract_class_version"`
	ABI                  json.RawMessage `json:"abi"`
}

// abiEntry is one raw ABI item. Interfaces nest their functions under
// Items.
type abiEntry struct {
	Type            string     `json:"type"`
	Name            string     `json:"name"`
	Kind            string     `json:"kind"`
	StateMutability string     `json:"state_mutability"`
	Items           []abiEntry `json:"items"`
}

// ExtractSierraProgram returns the textual Sierra program embedded in
// the class. Only the string form is supported; compiled felt arrays
// are reported as an error so callers can fall back to treating the
// raw input as a program.
func (c *ContractClass) ExtractSierraProgram() (string, error) {
	var text string
	if err := json.Unmarshal(c.SierraProgram, &text); err != nil {
		return "", errors.New("sierra_program does not hold a textual program")
	}
	return text, nil
}

// ExtractABI decodes the class ABI. The field comes in two shapes: a
// JSON array, or a JSON-encoded string holding that array.
func (c *ContractClass) ExtractABI() (*sierra.ABI, error) {
	if len(c.ABI) == 0 {
		return nil, nil
	}
	raw := c.ABI
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}
	var entries []abiEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.Wrap(err, "decoding abi")
	}

	abi := &sierra.ABI{}
	var collect func(items []abiEntry)
	collect = func(items []abiEntry) {
		for _, e := range items {
			switch e.Type {
			case "function":
				kind := sierra.EntryPointExternal
				if e.StateMutability == "view" {
					kind = sierra.EntryPointView
				}
				abi.EntryPoints = append(abi.EntryPoints, sierra.EntryPoint{Name: lastSegment(e.Name), Kind: kind})
			case "constructor":
				abi.EntryPoints = append(abi.EntryPoints, sierra.EntryPoint{Name: lastSegment(e.Name), Kind: sierra.EntryPointConstructor})
			case "l1_handler":
				abi.EntryPoints = append(abi.EntryPoints, sierra.EntryPoint{Name: lastSegment(e.Name), Kind: sierra.EntryPointL1Handler})
			case "event":
				abi.EntryPoints = append(abi.EntryPoints, sierra.EntryPoint{Name: lastSegment(e.Name), Kind: sierra.EntryPointEvent})
			case "storage":
				abi.EntryPoints = append(abi.EntryPoints, sierra.EntryPoint{Name: lastSegment(e.Name), Kind: sierra.EntryPointStorage})
			case "interface":
				collect(e.Items)
			}
		}
	}
	collect(entries)
	return abi, nil
}

func lastSegment(name string) string {
	for i := len(name) - 2; i >= 0; i-- {
		if name[i] == ':' && name[i+1] == ':' {
			return name[i+2:]
		}
	}
	return name
}

// Load parses program bytes in any supported input form: a contract
// class whose sierra_program field holds the textual program, or a raw
// textual program. Contract-class ABIs are attached to the result.
func Load(content []byte) (*sierra.Program, error) {
	var class ContractClass
	if err := json.Unmarshal(content, &class); err == nil && len(class.SierraProgram) > 0 {
		text, err := class.ExtractSierraProgram()
		if err == nil {
			program, err := Parse(text)
			if err != nil {
				return nil, err
			}
			if abi, err := class.ExtractABI(); err == nil {
				program.ABI = abi
			}
			return program, nil
		}
	}
	return Parse(string(content))
}
