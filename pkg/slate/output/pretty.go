package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatTable(r))
	w.WriteString(f.formatFooter(r))

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	return nil
}

// formatHeader builds the header box with source and scan metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	sourceLabel := LabelStyle.Render("Source:")
	sourceValue := ValueStyle.Render(r.Source)
	lines = append(lines, fmt.Sprintf("%s %s", sourceLabel, sourceValue))

	var infoParts []string

	scannedLabel := LabelStyle.Render("Scanned:")
	scannedValue := ValueStyle.Render(fmt.Sprintf("%d files in %s",
		r.Stats.FilesScanned, formatDuration(r.Stats.Duration)))
	infoParts = append(infoParts, fmt.Sprintf("%s %s", scannedLabel, scannedValue))

	if r.Stats.CacheHits > 0 {
		cacheLabel := LabelStyle.Render("Cache:")
		cacheValue := MutedStyle.Render(fmt.Sprintf("%d hits", r.Stats.CacheHits))
		infoParts = append(infoParts, fmt.Sprintf("%s %s", cacheLabel, cacheValue))
	}

	infoParts = append(infoParts, f.formatDaemonStatus(r.DaemonUp))

	lines = append(lines, strings.Join(infoParts, "  "))

	content := strings.Join(lines, "\n")
	return HeaderBox.Render(content)
}

// formatDaemonStatus returns a styled string indicating daemon status.
func (f *PrettyFormatter) formatDaemonStatus(daemonUp bool) string {
	if !daemonUp {
		return MutedStyle.Render("daemon: off")
	}
	return SuccessStyle.Render("daemon: up")
}

// formatTable builds the file table with VER, STATE, SIZE and PATH columns.
func (f *PrettyFormatter) formatTable(r *Result) string {
	if len(r.Files) == 0 {
		return MutedStyle.Render("  No managed files found\n")
	}

	var sb strings.Builder

	verHeader := TableHeaderStyle.Render("VER")
	stateHeader := TableHeaderStyle.Render("STATE")
	sizeHeader := TableHeaderStyle.Render("SIZE")
	pathHeader := TableHeaderStyle.Render("PATH")
	sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n", verHeader, stateHeader, sizeHeader, pathHeader))

	maxSizeWidth := 8
	for _, file := range r.Files {
		if len(file.SizeHuman) > maxSizeWidth {
			maxSizeWidth = len(file.SizeHuman)
		}
	}

	for _, file := range r.Files {
		verStr := VersionStyle.Render(padLeft(formatVersion(file.Version), 4))
		stateStr := StateStyle.Render(padRight(file.State, 5))
		sizeStr := SizeStyle.Render(padLeft(file.SizeHuman, maxSizeWidth))
		pathStr := PathStyle.Render(file.Path)
		sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n", verStr, stateStr, sizeStr, pathStr))
	}

	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	var parts []string

	fileCountLabel := LabelStyle.Render("Managed:")
	fileCountValue := ValueStyle.Render(fmt.Sprintf("%d", len(r.Files)))
	parts = append(parts, fmt.Sprintf("%s %s", fileCountLabel, fileCountValue))

	foreignLabel := LabelStyle.Render("Foreign:")
	foreignValue := ValueStyle.Render(fmt.Sprintf("%d", r.Stats.ForeignFiles))
	parts = append(parts, fmt.Sprintf("%s %s", foreignLabel, foreignValue))

	totalSizeLabel := LabelStyle.Render("Total:")
	totalSizeValue := ValueStyle.Render(humanize.IBytes(uint64(r.TotalSize())))
	parts = append(parts, fmt.Sprintf("%s %s", totalSizeLabel, totalSizeValue))

	hint := MutedStyle.Render("Use -o plain for unformatted output")
	parts = append(parts, hint)

	content := strings.Join(parts, "  ")
	return FooterBox.Render(content)
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	titleStyle := WarningStyle.Bold(true)
	sb.WriteString(titleStyle.Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatVersion renders a version number, or "-" when the name has none.
func formatVersion(v int) string {
	if v < 0 {
		return "-"
	}
	return fmt.Sprintf("%03d", v)
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// padRight pads a string with spaces on the right to achieve the desired width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats a time.Duration as a human-friendly string.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
