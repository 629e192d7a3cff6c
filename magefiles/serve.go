//go:build mage

package main

import (
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Serve builds the binary and runs the conversion server in the foreground.
func Serve() error {
	mg.Deps(Build)
	cmd := exec.Command("bin/convertd", "serve", "--temp-dir", "var/tmp",
		"--history-db", "var/history/requests.db")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
