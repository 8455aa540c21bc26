package ui

import (
	"io"
	"strings"

	"github.com/noborus/ov/oviewer"
)

// pagerCommand shows text in the ov pager. It implements tea.ExecCommand so
// Bubble Tea releases the terminal while ov runs and restores it afterwards.
type pagerCommand struct {
	content string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func newPagerCommand(content string) *pagerCommand {
	return &pagerCommand{content: content}
}

func (p *pagerCommand) SetStdin(r io.Reader)  { p.stdin = r }
func (p *pagerCommand) SetStdout(w io.Writer) { p.stdout = w }
func (p *pagerCommand) SetStderr(w io.Writer) { p.stderr = w }

// Run blocks until the pager is closed
func (p *pagerCommand) Run() error {
	root, err := oviewer.NewRoot(strings.NewReader(p.content))
	if err != nil {
		return err
	}

	// Don't write the document back to the terminal on exit
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
