package browser

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Prompter lets the handshake pause on recoverable failures and wait for the
// user to fix things in the browser before retrying. The zero implementations
// below cover the two modes: silent (fail fast) and interactive (console).
type Prompter interface {
	// ExtensionMissing blocks until the user confirms the extension is
	// installed.
	ExtensionMissing() error
	// ExtensionUnauthenticated blocks until the user confirms they signed in.
	ExtensionUnauthenticated() error
	// Success announces the window is ready.
	Success(browserWindowID string)
	// PageClosed reports that the initialization page disappeared while
	// waiting on the user. This is unrecoverable; the interactive console
	// prompter ends the process here.
	PageClosed()
}

// silentPrompter never waits; recoverable outcomes surface as errors.
type silentPrompter struct{}

func (silentPrompter) ExtensionMissing() error { return outcomeError(OutcomeExtensionMissing) }
func (silentPrompter) ExtensionUnauthenticated() error {
	return outcomeError(OutcomeExtensionUnauthenticated)
}
func (silentPrompter) Success(string) {}
func (silentPrompter) PageClosed()    {}

var (
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	chevronStyle = lipgloss.NewStyle().Bold(true)
)

// consolePrompter talks to the user on the terminal.
type consolePrompter struct {
	in   *bufio.Reader
	out  io.Writer
	exit func(int)
}

// NewConsolePrompter returns a Prompter bound to stdin/stdout.
func NewConsolePrompter() Prompter {
	return &consolePrompter{in: bufio.NewReader(os.Stdin), out: os.Stdout, exit: os.Exit}
}

func (c *consolePrompter) awaitEnter(message string) error {
	fmt.Fprintf(c.out, "\n%s %s\n", chevronStyle.Render(">"), promptStyle.Render(message))
	_, err := c.in.ReadString('\n')
	return err
}

func (c *consolePrompter) ExtensionMissing() error {
	return c.awaitEnter("The Narada extension is not installed. Please follow the instructions " +
		"in the browser window to install it first, then press Enter to continue.")
}

func (c *consolePrompter) ExtensionUnauthenticated() error {
	return c.awaitEnter("Please sign in to the Narada extension first, then press Enter to continue.")
}

func (c *consolePrompter) Success(browserWindowID string) {
	fmt.Fprintf(c.out, "\n%s %s\n\n", chevronStyle.Render(">"),
		successStyle.Render("Initialization successful. Browser window ID: "+browserWindowID))
}

// PageClosed prints the fatal message and ends the process: once the user
// closes the initialization page mid-handshake there is nothing left to
// retry interactively.
func (c *consolePrompter) PageClosed() {
	fmt.Fprintf(c.out, "\n%s %s\n", chevronStyle.Render(">"),
		errorStyle.Render("It seems the Narada automation page was closed. Please retry the "+
			"action and keep the Narada web page open."))
	c.exit(1)
}
