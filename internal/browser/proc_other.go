//go:build !linux

package browser

import "os/exec"

func detachCmd(*exec.Cmd) {}

const detachSupported = false
