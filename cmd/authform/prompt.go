package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// prompter reads answers line by line and prints coloured feedback.
type prompter struct {
	in  *bufio.Reader
	out io.Writer

	errc  *color.Color
	infoc *color.Color
	okc   *color.Color
	label *color.Color
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		in:    bufio.NewReader(in),
		out:   out,
		errc:  color.New(color.FgRed),
		infoc: color.New(color.FgCyan),
		okc:   color.New(color.FgGreen, color.Bold),
		label: color.New(color.Bold),
	}
}

// ask prints label and returns the next input line without its newline.
func (p *prompter) ask(label string) (string, error) {
	p.label.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *prompter) errorf(format string, args ...any) {
	p.errc.Fprintf(p.out, "✗ "+format+"\n", args...)
}

func (p *prompter) infof(format string, args ...any) {
	p.infoc.Fprintf(p.out, format+"\n", args...)
}

func (p *prompter) successf(format string, args ...any) {
	p.okc.Fprintf(p.out, "✓ "+format+"\n", args...)
}

func (p *prompter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}
