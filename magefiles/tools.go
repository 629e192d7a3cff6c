//go:build mage

package main

import (
	"fmt"
	"os/exec"
)

// Tools reports which external conversion tools are on PATH. The server
// degrades gracefully without them but Office and rasterization
// operations will fail.
func Tools() error {
	check := func(label string, bins ...string) {
		for _, bin := range bins {
			if path, err := exec.LookPath(bin); err == nil {
				fmt.Printf("  %-12s %s\n", label, path)
				return
			}
		}
		fmt.Printf("  %-12s not found (tried %v)\n", label, bins)
	}

	fmt.Println("External tools:")
	check("office", "soffice", "libreoffice")
	check("rasterizer", "pdftoppm", "mutool")
	return nil
}
