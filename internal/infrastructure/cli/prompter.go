package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/doeshing/k8sllm/internal/ports"
)

// Prompter implements ConfirmationPrompter and LineReader over one buffered
// reader, so queries and confirmations never race for stdin.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter referencing stdio. Confirmation is only
// enabled when input is a terminal or a non-file reader.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	interactive := true
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Enabled indicates the prompter can ask for confirmation.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Confirm writes the gate's prompt and accepts y or yes.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	line, err := p.ReadLine(prompt)
	if err != nil {
		return false, err
	}
	line = strings.ToLower(line)
	return line == "y" || line == "yes", nil
}

// ReadLine writes prompt and returns the next trimmed line. A final line
// without a newline is returned before io.EOF is reported.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(p.out, prompt)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

var (
	_ ports.ConfirmationPrompter = (*Prompter)(nil)
	_ ports.LineReader           = (*Prompter)(nil)
)
