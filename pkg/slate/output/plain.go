package output

import (
	"bytes"
	"text/tabwriter"
)

// PlainFormatter formats output as a simple tab-separated table.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("VER\tSTATE\tSIZE\tPATH\n")); err != nil {
		return err
	}

	for _, file := range r.Files {
		row := formatVersion(file.Version) + "\t" + file.State + "\t" + file.SizeHuman + "\t" + file.Path + "\n"
		if _, err := tw.Write([]byte(row)); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
