package resolve

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TerminalProvider answers prompts by reading lines from an input stream,
// normally stdin. Prompts block until the user answers; there is no timeout.
type TerminalProvider struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalProvider creates a provider reading answers from in and
// writing prompts to out.
func NewTerminalProvider(in io.Reader, out io.Writer) *TerminalProvider {
	return &TerminalProvider{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm asks a yes/no question. EOF and unrecognized answers count as no.
func (p *TerminalProvider) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// ResolveConflict asks how to handle an occupied destination. The user
// answers overwrite, skip, or cancel; EOF cancels the run.
func (p *TerminalProvider) ResolveConflict(dest string) (Decision, error) {
	for {
		fmt.Fprintf(p.out, "%s exists. [o]verwrite, [s]kip, [c]ancel: ", dest)

		line, err := p.in.ReadString('\n')
		if err == io.EOF {
			return DecisionCancel, nil
		}
		if err != nil {
			return DecisionSkip, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "o", "overwrite":
			return DecisionOverwrite, nil
		case "s", "skip", "":
			return DecisionSkip, nil
		case "c", "cancel", "q", "quit":
			return DecisionCancel, nil
		}
		fmt.Fprintln(p.out, "unrecognized answer")
	}
}

// Ensure TerminalProvider implements DecisionProvider.
var _ DecisionProvider = (*TerminalProvider)(nil)
