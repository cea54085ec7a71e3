//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the unit tests with the race detector after vetting.
func (Test) Race() error {
	mg.Deps(Vet)
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream())
	return err
}

// Runs the kernel tests with coverage written to cover.out.
func (Test) Cover() error {
	_, err := executeCmd("go", withArgs("test", "-coverprofile=cover.out", "./kernel/...", "./surface/...", "./meshio/..."), withStream())
	return err
}
