package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"rickdex/internal/browse"
	"rickdex/pkg/models"
)

const emptyMessage = "No characters found"

var statusIcons = map[browse.StatusTag]string{
	browse.StatusAlive:   "🟢",
	browse.StatusDead:    "🔴",
	browse.StatusUnknown: "⚪",
}

// pageBar renders the visible page window with the current page bracketed.
func pageBar(current, total int) string {
	var b strings.Builder
	window := browse.VisiblePageWindow(current, total, browse.DefaultVisiblePages)
	if len(window) > 0 && window[0] > 1 {
		b.WriteString("« ")
	}
	for i, p := range window {
		if i > 0 {
			b.WriteByte(' ')
		}
		if p == current {
			fmt.Fprintf(&b, "[%d]", p)
		} else {
			fmt.Fprintf(&b, "%d", p)
		}
	}
	if len(window) > 0 && window[len(window)-1] < total {
		b.WriteString(" »")
	}
	return b.String()
}

func printPage(w io.Writer, current, total int, chars []models.Character, selected int) {
	if len(chars) == 0 {
		fmt.Fprintln(w, emptyMessage)
		return
	}
	printRows(w, chars, selected)
	fmt.Fprintf(w, "page %d/%d  %s\n", current, total, pageBar(current, total))
}

func printRows(w io.Writer, chars []models.Character, selected int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range chars {
		marker := " "
		if c.ID == selected {
			marker = ">"
		}
		fmt.Fprintf(tw, "%s %d\t%s %s\t%s\t%s\n",
			marker, c.ID, statusIcons[browse.ClassifyStatus(c.Status)], c.Name, c.Status, c.Species)
	}
	tw.Flush()
}

func printCharacter(w io.Writer, c models.Character) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%d\n", c.ID)
	fmt.Fprintf(tw, "name\t%s\n", c.Name)
	fmt.Fprintf(tw, "status\t%s %s\n", statusIcons[browse.ClassifyStatus(c.Status)], c.Status)
	fmt.Fprintf(tw, "species\t%s\n", c.Species)
	if c.Type != "" {
		fmt.Fprintf(tw, "type\t%s\n", c.Type)
	}
	fmt.Fprintf(tw, "gender\t%s\n", c.Gender)
	fmt.Fprintf(tw, "origin\t%s\n", c.Origin.Name)
	fmt.Fprintf(tw, "location\t%s\n", c.Location.Name)
	fmt.Fprintf(tw, "episodes\t%d\n", len(c.Episode))
	if c.Image != "" {
		fmt.Fprintf(tw, "image\t%s\n", c.Image)
	}
	tw.Flush()
}
