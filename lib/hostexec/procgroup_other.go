// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !(darwin || linux)

package hostexec

import "os/exec"

func configureProcessGroup(*exec.Cmd) {}
