package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"rickdex/internal/session"
	"rickdex/pkg/models"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

type remoteFrame struct {
	Type        string             `json:"type"`
	Phase       string             `json:"phase"`
	Query       string             `json:"query"`
	CurrentPage int                `json:"current_page"`
	TotalPages  int                `json:"total_pages"`
	Results     []models.Character `json:"results"`
	SelectedID  int                `json:"selected_id"`
	Message     string             `json:"message"`
	Error       string             `json:"error"`
	ErrorKind   string             `json:"error_kind"`
	ID          int                `json:"id"`
	Character   *models.Character  `json:"character"`
}

// handleRemote drives a session on the API server instead of a local
// controller. Input uses the same commands as browse.
func handleRemote(ctx context.Context, server string) {
	var sess sessionResponse
	if err := postJSON(ctx, server+"/sessions", &sess); err != nil {
		log.Fatalf("create session: %v", err)
	}

	endpoint, err := websocketURL(server, "/sessions/ws")
	if err != nil {
		log.Fatalf("ws url: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(endpoint+"?token="+url.QueryEscape(sess.Token), nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	log.Printf("[remote] session %s", sess.SessionID)

	var page atomic.Int64
	go func() {
		if err := readFrames(conn, os.Stdout, &page); err != nil {
			log.Printf("[remote] disconnected: %v", err)
			os.Exit(1)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line, err := parseBrowseLine(scanner.Text())
		if err != nil {
			fmt.Println(err)
			continue
		}
		cmd, quit := remoteCommand(line, int(page.Load()))
		if quit {
			return
		}
		if err := conn.WriteJSON(cmd); err != nil {
			log.Fatalf("send: %v", err)
		}
	}
}

// remoteCommand translates a browse line. :n and :p need the current page,
// which the server validates.
func remoteCommand(line browseLine, current int) (session.Command, bool) {
	switch line.kind {
	case lineNext:
		return session.Command{Type: "page", Page: current + 1}, false
	case linePrev:
		return session.Command{Type: "page", Page: current - 1}, false
	case lineGoTo:
		return session.Command{Type: "page", Page: line.n}, false
	case lineSelect:
		return session.Command{Type: "select", ID: line.n}, false
	case lineRefresh:
		return session.Command{Type: "refresh"}, false
	case lineQuit:
		return session.Command{}, true
	default:
		return session.Command{Type: "search", Text: line.text}, false
	}
}

// readFrames prints frames until the connection drops, tracking the page on
// screen in page.
func readFrames(conn *websocket.Conn, out io.Writer, page *atomic.Int64) error {
	for {
		var f remoteFrame
		if err := conn.ReadJSON(&f); err != nil {
			return err
		}
		switch f.Type {
		case "state":
			page.Store(int64(f.CurrentPage))
			switch f.Phase {
			case "ready":
				printPage(out, f.CurrentPage, f.TotalPages, f.Results, f.SelectedID)
			case "empty":
				fmt.Fprintln(out, f.Message)
				if f.Error != "" {
					fmt.Fprintf(out, "(%s: %s)\n", f.ErrorKind, f.Error)
				}
			}
		case "detail":
			if f.Phase == "loaded" && f.Character != nil {
				printCharacter(out, *f.Character)
			} else if f.Phase == "failed" {
				fmt.Fprintf(out, "could not load character %d: %s\n", f.ID, f.Error)
			}
		case "error":
			fmt.Fprintln(out, f.Error)
		}
	}
}

func postJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return json.Unmarshal(data, out)
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String(), nil
}
