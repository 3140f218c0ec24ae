// Package output prints styled status lines for the magpie CLI.
//
// Functions use lipgloss for styling and hide the details from callers.
// Quiet mode suppresses everything except errors.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle   = lipgloss.NewStyle().Bold(true)

	mu          sync.Mutex
	out         io.Writer = os.Stdout
	verboseMode bool
	quietMode   bool
)

// SetOutput redirects all output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Writer returns the current destination.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// SetVerbose enables or disables Verbose lines.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

// SetQuiet suppresses everything but Error.
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quietMode = q
}

func emit(s string, always bool) {
	mu.Lock()
	defer mu.Unlock()
	if quietMode && !always {
		return
	}
	fmt.Fprintln(out, s)
}

// Success prints a success message with ✅ and green color.
//
// Example:
//
//	output.Success("Wrote import_graph.html")
func Success(msg string) {
	emit(successStyle.Render("✅ "+msg), false)
}

// Error prints an error message with ❌ and red color. It is never suppressed.
func Error(msg string) {
	emit(errorStyle.Render("❌ "+msg), true)
}

// Info prints an informational message with ℹ️ and cyan color.
func Info(msg string) {
	emit(infoStyle.Render("ℹ️  "+msg), false)
}

// Step prints an indented step message in gray.
//
// Example:
//
//	output.Step("main.py → engine/core.py")
func Step(msg string) {
	emit(stepStyle.Render("   "+msg), false)
}

// Stat prints an aligned "key value" line.
//
// Example:
//
//	output.Stat("Files", 42)
func Stat(key string, value any) {
	emit("   "+keyStyle.Render(key)+valueStyle.Render(fmt.Sprint(value)), false)
}

// Verbose prints a debug message with 🔍 only if verbose mode is enabled.
func Verbose(msg string) {
	mu.Lock()
	enabled := verboseMode
	mu.Unlock()
	if enabled {
		emit(stepStyle.Render("🔍 "+msg), false)
	}
}
