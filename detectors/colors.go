// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detectors

import "github.com/fatih/color"

var (
	redBold  = color.New(color.FgRed, color.Bold).SprintFunc()
	boldName = color.New(color.Bold).SprintFunc()
)

// highConfidence renders the High tag, emphasized when color is on.
func highConfidence() string { return redBold("High") }
