//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

type cmdOptions struct {
	args   []string
	stream bool
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) { o.args = args }
}

func withStream() cmdOption {
	return func(o *cmdOptions) { o.stream = true }
}

// executeCmd runs command and returns its combined output. Output is
// streamed when asked to or when mage runs verbose.
func executeCmd(command string, options ...cmdOption) (string, error) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}
	fmt.Printf("Executing: %s %s\n", command, strings.Join(opts.args, " "))
	cmd := exec.Command(command, opts.args...)
	stream := mg.Verbose() || opts.stream
	var b bytes.Buffer
	if stream {
		cmd.Stdout = io.MultiWriter(&b, os.Stdout)
		cmd.Stderr = io.MultiWriter(&b, os.Stderr)
	} else {
		cmd.Stdout = &b
		cmd.Stderr = &b
	}
	if err := cmd.Run(); err != nil {
		if !stream {
			fmt.Println(b.String())
		}
		return "", fmt.Errorf("%s %s: %w", command, strings.Join(opts.args, " "), err)
	}
	return b.String(), nil
}
