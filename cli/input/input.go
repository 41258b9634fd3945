// Package input contains terminal input helpers for the CLI commands.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// Terminal is a terminal used for input. If `nil`, stdin is used.
var Terminal *term.Terminal

// ReadLine reads a line from the input without the trailing '\n'.
func ReadLine(w io.Writer, prompt string) (string, error) {
	if Terminal != nil {
		_, err := Terminal.Write([]byte(prompt))
		if err != nil {
			return "", err
		}
		raw, err := Terminal.ReadLine()
		return strings.TrimRight(raw, "\n"), err
	}
	fmt.Fprint(w, prompt)
	buf := bufio.NewReader(os.Stdin)
	line, err := buf.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

// ReadPassword reads the user's password with the given prompt without
// echoing it.
func ReadPassword(w io.Writer, prompt string) (string, error) {
	if Terminal != nil {
		return Terminal.ReadPassword(prompt)
	}
	fmt.Fprint(w, prompt)
	rawPass, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(w)
	return strings.TrimRight(string(rawPass), "\n"), nil
}

// ReadNewPassword reads the password twice and checks that both reads
// match.
func ReadNewPassword(w io.Writer) (string, error) {
	pass, err := ReadPassword(w, "Enter new password > ")
	if err != nil {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	confirmation, err := ReadPassword(w, "Confirm password > ")
	if err != nil {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	if pass != confirmation {
		return "", errors.New("passwords do not match")
	}
	return pass, nil
}
