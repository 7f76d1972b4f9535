//go:build linux

package browser

import (
	"os/exec"
	"syscall"
)

// detachCmd moves Chrome into its own process group so a terminal Ctrl-C
// reaches only the sender. Pdeathsig still kills Chrome with its parent.
func detachCmd(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.SysProcAttr.Pdeathsig = syscall.SIGKILL
}

const detachSupported = true
