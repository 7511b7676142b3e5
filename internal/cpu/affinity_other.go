//go:build !linux && !windows

package cpu

// pinToCore is unavailable here; macOS and the BSDs only expose affinity hints.
func pinToCore(int) error {
	return ErrPinUnsupported
}
