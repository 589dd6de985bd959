package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errStdinUnavailable = errors.New("stdin unavailable")

// promptPassword reads one line from stdin with terminal echo off. Input that
// is not a terminal, such as a pipe, is read as is.
func promptPassword(out io.Writer, stdin *os.File, label string) (string, error) {
	if stdin == nil {
		return "", errStdinUnavailable
	}

	fmt.Fprint(out, label)
	restore, err := disableEcho(stdin)
	if err == nil {
		defer func() {
			restore()
			fmt.Fprintln(out)
		}()
	}

	return readLine(stdin)
}

// readLine reads byte by byte so consecutive prompts on the same file do not
// lose buffered input.
func readLine(reader io.Reader) (string, error) {
	var line strings.Builder
	buffer := make([]byte, 1)
	for {
		n, err := reader.Read(buffer)
		if n == 1 {
			if buffer[0] == '\n' {
				break
			}
			line.WriteByte(buffer[0])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(line.String(), "\r"), nil
}
