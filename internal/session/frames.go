package session

import (
	"rickdex/internal/browse"
	"rickdex/internal/directory"
	"rickdex/pkg/models"
)

const emptyMessage = "No characters found"

// CharacterView is a character with its display status tag.
type CharacterView struct {
	models.Character
	StatusTag browse.StatusTag `json:"status_tag"`
}

type StateFrame struct {
	Type         string          `json:"type"`
	SearchText   string          `json:"search_text"`
	Query        string          `json:"query"`
	CurrentPage  int             `json:"current_page"`
	TotalPages   int             `json:"total_pages"`
	VisiblePages []int           `json:"visible_pages"`
	IsLoading    bool            `json:"is_loading"`
	Phase        browse.Phase    `json:"phase"`
	Results      []CharacterView `json:"results"`
	SelectedID   int             `json:"selected_id,omitempty"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
	ErrorKind    string          `json:"error_kind,omitempty"`
	Revision     uint64          `json:"revision"`
}

type DetailFrame struct {
	Type      string             `json:"type"`
	ID        int                `json:"id"`
	Phase     browse.DetailPhase `json:"phase"`
	Character *CharacterView     `json:"character,omitempty"`
	Error     string             `json:"error,omitempty"`
}

type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Command is what clients send over the socket.
type Command struct {
	Type string `json:"type"` // search | page | refresh | select
	Text string `json:"text,omitempty"`
	Page int    `json:"page,omitempty"`
	ID   int    `json:"id,omitempty"`
}

func viewOf(c models.Character) CharacterView {
	return CharacterView{Character: c, StatusTag: browse.ClassifyStatus(c.Status)}
}

func NewStateFrame(s browse.State) StateFrame {
	f := StateFrame{
		Type:         "state",
		SearchText:   s.SearchText,
		Query:        s.Query,
		CurrentPage:  s.CurrentPage,
		TotalPages:   s.TotalPages,
		VisiblePages: browse.VisiblePageWindow(s.CurrentPage, s.TotalPages, browse.DefaultVisiblePages),
		IsLoading:    s.IsLoading,
		Phase:        s.Phase,
		Results:      make([]CharacterView, 0, len(s.Results)),
		SelectedID:   s.SelectedID,
		Revision:     s.Revision,
	}
	for _, c := range s.Results {
		f.Results = append(f.Results, viewOf(c))
	}
	if s.Phase == browse.PhaseEmpty {
		f.Message = emptyMessage
	}
	if s.Err != nil && !directory.IsNotFound(s.Err) {
		f.Error = s.Err.Error()
		f.ErrorKind = directory.KindOf(s.Err).String()
	}
	return f
}

func NewDetailFrame(d browse.Detail) DetailFrame {
	f := DetailFrame{Type: "detail", ID: d.ID, Phase: d.Phase}
	if d.Character != nil {
		v := viewOf(*d.Character)
		f.Character = &v
	}
	if d.Err != nil {
		f.Error = d.Err.Error()
	}
	return f
}
