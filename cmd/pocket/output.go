package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/aretw0/pocket/pkg/core"
)

const listTitleWidth = 48

func printNotes(w io.Writer, notes []core.Note) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPDATED\tTITLE")
	for _, n := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.ID, formatTime(n.Updated), runewidth.Truncate(n.Title, listTitleWidth, "…"))
	}
	_ = tw.Flush()
}

func printNote(w io.Writer, n core.Note) {
	fmt.Fprintln(w, n.Title)
	fmt.Fprintf(w, "id: %s  created: %s  updated: %s\n", n.ID, formatTime(n.Created), formatTime(n.Updated))
	if n.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimRight(n.Body, "\n"))
	}
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}

// readBody returns value, or all of in when value is "-".
func readBody(value string, in io.Reader) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading body from stdin: %w", err)
	}
	return string(data), nil
}
