// Package terminal reads interactive input such as login credentials.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmptyInput is returned when the user submits an empty answer.
var ErrEmptyInput = errors.New("empty input")

// Prompter asks questions on Out and reads answers from In. Secrets are read
// without echo when In is a terminal, and as a plain line otherwise so that
// credentials can be piped in.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// Stdio returns a Prompter bound to the process standard streams.
func Stdio() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout}
}

// Line prints label and returns the trimmed answer.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprintf(p.Out, "%s: ", label)
	return p.readLine()
}

// Secret prints label and reads an answer without echoing it.
func (p *Prompter) Secret(label string) (string, error) {
	fmt.Fprintf(p.Out, "%s: ", label)
	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", err
		}
		if len(b) == 0 {
			return "", ErrEmptyInput
		}
		return string(b), nil
	}
	// Not trimmed beyond the line ending: passwords may carry spaces.
	line, err := p.rawLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return "", ErrEmptyInput
	}
	return line, nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.rawLine()
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrEmptyInput
	}
	return line, nil
}

func (p *Prompter) rawLine() (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Width returns the terminal width of stdout, or 80 when unknown.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}
