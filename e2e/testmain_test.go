//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// TestMain compiles peoplesearch once so every test drives the same binary
func TestMain(m *testing.M) {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "e2e: cannot resolve working directory: %v\n", err)
		os.Exit(1)
	}
	binPath = filepath.Join(dir, "peoplesearch_e2e")

	build := exec.Command("go", "build", "-o", binPath, ".")
	build.Dir = filepath.Dir(dir) // module root
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "e2e: building peoplesearch failed: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	_ = os.Remove(binPath)
	os.Exit(code)
}
