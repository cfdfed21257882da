//go:build !windows

package asr

import "os/exec"

func hideConsoleWindow(cmd *exec.Cmd) {}
