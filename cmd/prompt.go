package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadValue reads a value from stdin. An interactive terminal is read
// without echo; piped input is read to EOF with one trailing newline
// trimmed.
func ReadValue(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		value, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr) // New line after value
		if err != nil {
			return "", fmt.Errorf("failed to read value: %w", err)
		}
		return string(value), nil
	}

	return readPiped(os.Stdin)
}

func readPiped(r io.Reader) (string, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return "", fmt.Errorf("failed to read value: %w", err)
	}
	value := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(value, "\r"), nil
}
