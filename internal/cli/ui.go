package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// =============================================================================
// Palette
// =============================================================================

// The palette follows the card colours of the rendered page.
var (
	colorCyan   = lipgloss.Color("#06b6d4") // male ring, primary
	colorPink   = lipgloss.Color("#ec4899") // female ring
	colorPurple = lipgloss.Color("#a855f7") // fly-to highlight
	colorGreen  = lipgloss.Color("#22c55e")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorBlue   = lipgloss.Color("#60a5fa")
	colorWhite  = lipgloss.Color("#e2e8f0") // card name
	colorGray   = lipgloss.Color("#94a3b8") // card dates
	colorDim    = lipgloss.Color("#475569")
)

var (
	// StyleTitle for headings and table headers.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for titles, names and status messages.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorPurple)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for validation warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorPink)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Messages
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

// printWarning prints a warning; the whole line is tinted.
func printWarning(format string, args ...any) {
	fmt.Println(StyleWarning.Render(iconWarning + " " + fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints a one-line summary of a loaded tree, for example
// "12 people · 15 relations · fresh".
func printStats(people, relations, warnings int, cached bool) {
	parts := []string{StyleDim.Render(plural(people, "person", "people"))}
	if relations > 0 {
		parts = append(parts, StyleDim.Render(plural(relations, "relation", "relations")))
	}
	if warnings > 0 {
		parts = append(parts, StyleWarning.Render(plural(warnings, "warning", "warnings")))
	}
	if cached {
		parts = append(parts, styleIconSuccess.Render("cached"))
	} else {
		parts = append(parts, styleIconInfo.Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// newTable returns a rounded table with a highlighted header row and a
// dimmed first column.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return StyleTitle.Padding(0, 1)
			case col == 0:
				return StyleDim.Padding(0, 1)
			default:
				return StyleValue.Padding(0, 1)
			}
		})
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
