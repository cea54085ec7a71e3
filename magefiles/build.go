//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the meshclip command into bin/.
func (Build) CLI() error {
	fmt.Println("Building meshclip...")
	_, err := executeCmd("go", withArgs("build", "-o", "bin/meshclip", "./cmd/meshclip"), withStream())
	return err
}

// Runs go vet over every package.
func Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."))
	return err
}
