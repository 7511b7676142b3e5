//go:build windows

package cpu

import "syscall"

var (
	kernel32                  = syscall.NewLazyDLL("kernel32.dll")
	procSetThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	procGetCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// pinToCore restricts the current OS thread to core via SetThreadAffinityMask.
// A zero previous mask signals failure.
func pinToCore(core int) error {
	thread, _, _ := procGetCurrentThread.Call()
	prev, _, err := procSetThreadAffinityMask.Call(thread, uintptr(1)<<uint(core))
	if prev == 0 {
		return err
	}
	return nil
}
