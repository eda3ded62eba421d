package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"rickdex/internal/browse"
	"rickdex/internal/directory"
	"rickdex/pkg/models"
)

var cast = []models.Character{
	{ID: 1, Name: "Rick Sanchez", Status: "Alive"},
	{ID: 2, Name: "Morty Smith", Status: "Alive"},
	{ID: 6, Name: "Abadango Cluster Princess", Status: "Alive"},
	{ID: 8, Name: "Adjudicator Rick", Status: "Dead"},
	{ID: 10, Name: "Alan Rails", Status: "Dead"},
	{ID: 19, Name: "Antenna Rick", Status: "unknown"},
}

// fakeDirectory answers instantly from cast. Every page holds the same
// matches; the page count is fixed so pagination can be exercised.
type fakeDirectory struct {
	pages int
}

func (f fakeDirectory) ListCharacters(ctx context.Context, q directory.Query) (*models.CharacterPage, error) {
	var out []models.Character
	for _, c := range cast {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(q.Name)) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, &directory.Error{Op: "list", Kind: directory.ServiceError, Status: http.StatusNotFound, Err: errors.New("There is nothing here")}
	}
	return &models.CharacterPage{Info: models.PageInfo{Count: len(out), Pages: f.pages}, Results: out}, nil
}

func (f fakeDirectory) GetCharacter(ctx context.Context, id int) (*models.Character, error) {
	for _, c := range cast {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, &directory.Error{Op: "get", Kind: directory.ServiceError, Status: http.StatusNotFound, Err: errors.New("Character not found")}
}

func testFactory(pages int) Factory {
	return func() *browse.Controller {
		return browse.NewController(fakeDirectory{pages: pages}, browse.Options{Debounce: 10 * time.Millisecond})
	}
}

func testTokens() TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "rickdex-test", Duration: time.Hour}
}
