package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/doeshing/k8sllm/internal/ports"
)

// Renderer prints cycle state in the terminal.
type Renderer struct {
	out     io.Writer
	danger  *color.Color
	safe    *color.Color
	heading *color.Color
}

// NewRenderer builds a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:     out,
		danger:  color.New(color.FgRed, color.BgBlack, color.Bold),
		safe:    color.New(color.FgGreen, color.Bold),
		heading: color.New(color.Bold),
	}
}

// ShowCommand prints the command in red when dangerous, green otherwise.
func (r *Renderer) ShowCommand(command string, dangerous bool) {
	fmt.Fprintln(r.out, "Command to execute:")
	style := r.safe
	if dangerous {
		style = r.danger
	}
	style.Fprintf(r.out, " %s", command)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out)
}

// ShowAnswerHeader prints the bold answer heading.
func (r *Renderer) ShowAnswerHeader() {
	r.heading.Fprint(r.out, "\nAnswer:")
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out)
}

var _ ports.Presenter = (*Renderer)(nil)
