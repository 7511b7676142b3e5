//go:build linux

package cpu

import "golang.org/x/sys/unix"

// pinToCore restricts the current OS thread to core. The caller must hold
// runtime.LockOSThread, otherwise the mask ends up on an arbitrary thread.
func pinToCore(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)

	// pid 0 targets the calling thread.
	return unix.SchedSetaffinity(0, &set)
}
