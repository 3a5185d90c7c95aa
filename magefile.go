//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary  = "accentcoach"
	mainPkg = "./cmd/accentcoach"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the accentcoach binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, mainPkg)
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over the module
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs the binary into $GOPATH/bin
func Install() error {
	mg.Deps(Test)
	fmt.Println("Installing", binary)
	return sh.RunV("go", "install", mainPkg)
}

// Clean removes the built binary
func Clean() error {
	fmt.Println("Cleaning...")
	return os.RemoveAll(binary)
}
