package server

import (
	"os/exec"
	"runtime"
)

// OpenBrowser opens url in the default browser. Failure is not fatal to the
// caller; the URL is always printed as well.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
