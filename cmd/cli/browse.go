package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"rickdex/internal/browse"
	"rickdex/internal/directory"
)

type lineKind int

const (
	lineSearch lineKind = iota
	lineNext
	linePrev
	lineGoTo
	lineSelect
	lineRefresh
	lineQuit
)

type browseLine struct {
	kind lineKind
	text string
	n    int
}

// parseBrowseLine maps one line of input to an action. Anything that is not
// a ':' command is a search for that text.
func parseBrowseLine(line string) (browseLine, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return browseLine{kind: lineSearch, text: trimmed}, nil
	}

	fields := strings.Fields(trimmed)
	argN := func() (int, error) {
		if len(fields) != 2 {
			return 0, fmt.Errorf("%s needs a number", fields[0])
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", fields[0], fields[1])
		}
		return n, nil
	}

	switch fields[0] {
	case ":n":
		return browseLine{kind: lineNext}, nil
	case ":p":
		return browseLine{kind: linePrev}, nil
	case ":r":
		return browseLine{kind: lineRefresh}, nil
	case ":q":
		return browseLine{kind: lineQuit}, nil
	case ":g":
		n, err := argN()
		return browseLine{kind: lineGoTo, n: n}, err
	case ":s":
		n, err := argN()
		return browseLine{kind: lineSelect, n: n}, err
	default:
		return browseLine{}, errors.New("unknown command " + fields[0])
	}
}

// screen prints controller snapshots, skipping ones that only changed the
// pending search text.
type screen struct {
	mu   sync.Mutex
	out  io.Writer
	last struct {
		phase    browse.Phase
		gen      uint64
		selected int
	}
}

func (s *screen) render(st browse.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.Phase == s.last.phase && st.Generation == s.last.gen && st.SelectedID == s.last.selected {
		return
	}
	s.last.phase, s.last.gen, s.last.selected = st.Phase, st.Generation, st.SelectedID

	switch st.Phase {
	case browse.PhaseLoading:
		fmt.Fprintln(s.out, "… loading")
	case browse.PhaseEmpty:
		fmt.Fprintln(s.out, emptyMessage)
		if st.Err != nil && !directory.IsNotFound(st.Err) {
			fmt.Fprintf(s.out, "(%s: %v)\n", directory.KindOf(st.Err), st.Err)
		}
	case browse.PhaseReady:
		if st.Query != "" {
			fmt.Fprintf(s.out, "results for %q\n", st.Query)
		}
		printPage(s.out, st.CurrentPage, st.TotalPages, st.Results, st.SelectedID)
	}
}

func (s *screen) detail(d browse.Detail) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch d.Phase {
	case browse.DetailLoading:
		fmt.Fprintf(s.out, "… loading character %d\n", d.ID)
	case browse.DetailFailed:
		fmt.Fprintf(s.out, "could not load character %d: %v\n", d.ID, d.Err)
	case browse.DetailLoaded:
		printCharacter(s.out, *d.Character)
	}
}

func (s *screen) say(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format+"\n", args...)
}

func handleBrowse(client *directory.Client, debounce time.Duration, args []string) {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	delay := fs.Duration("debounce", debounce, "quiet period before a search is sent")
	_ = fs.Parse(args)

	ctrl := browse.NewController(client, browse.Options{Debounce: *delay})
	defer ctrl.Close()

	scr := &screen{out: os.Stdout}
	scr.last.phase = browse.PhaseIdle
	unsubscribe := ctrl.Subscribe(scr.render)
	defer unsubscribe()

	fmt.Println("type to search; :n :p next/prev, :g N page, :s ID details, :r refresh, :q quit")
	ctrl.FetchPage("", 1)

	if err := runBrowse(context.Background(), ctrl, client, scr, os.Stdin); err != nil {
		log.Fatalf("browse: %v", err)
	}
}

func runBrowse(ctx context.Context, ctrl *browse.Controller, details browse.CharacterFetcher, scr *screen, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line, err := parseBrowseLine(scanner.Text())
		if err != nil {
			scr.say("%v", err)
			continue
		}

		st := ctrl.State()
		switch line.kind {
		case lineSearch:
			ctrl.SetSearchText(line.text)
		case lineNext:
			if !ctrl.GoToPage(st.CurrentPage + 1) {
				scr.say("already on the last page")
			}
		case linePrev:
			if !ctrl.GoToPage(st.CurrentPage - 1) {
				scr.say("already on the first page")
			}
		case lineGoTo:
			if !ctrl.GoToPage(line.n) {
				scr.say("page %d is out of range (1-%d)", line.n, st.TotalPages)
			}
		case lineRefresh:
			ctrl.Refresh()
		case lineSelect:
			if !ctrl.Select(line.n) {
				scr.say("character %d is not on this page", line.n)
				continue
			}
			browse.LoadDetail(ctx, details, line.n, scr.detail)
		case lineQuit:
			return nil
		}
	}
	return scanner.Err()
}
