package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const rickJSON = `{"id":1,"name":"Rick Sanchez","status":"Alive","species":"Human","type":"","gender":"Male",
"origin":{"name":"Earth (C-137)","url":"https://rickandmortyapi.com/api/location/1"},
"location":{"name":"Citadel of Ricks","url":"https://rickandmortyapi.com/api/location/3"},
"image":"https://rickandmortyapi.com/api/character/avatar/1.jpeg",
"episode":["https://rickandmortyapi.com/api/episode/1","https://rickandmortyapi.com/api/episode/2"]}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second)
}

func TestListCharactersSendsQuery(t *testing.T) {
	var gotPath, gotName, gotPage, gotStatus string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotName = r.URL.Query().Get("name")
		gotPage = r.URL.Query().Get("page")
		gotStatus = r.URL.Query().Get("status")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"info":{"count":1,"pages":3},"results":[` + rickJSON + `]}`))
	})

	page, err := client.ListCharacters(context.Background(), Query{Name: "rick sanchez", Page: 2, Status: "alive"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotPath != "/character" {
		t.Errorf("Expected path '/character', got '%s'", gotPath)
	}
	if gotName != "rick sanchez" {
		t.Errorf("Expected name 'rick sanchez', got '%s'", gotName)
	}
	if gotPage != "2" {
		t.Errorf("Expected page '2', got '%s'", gotPage)
	}
	if gotStatus != "alive" {
		t.Errorf("Expected status 'alive', got '%s'", gotStatus)
	}
	if page.Info.Pages != 3 {
		t.Errorf("Expected 3 pages, got %d", page.Info.Pages)
	}
	if len(page.Results) != 1 || page.Results[0].Name != "Rick Sanchez" {
		t.Fatalf("Expected Rick Sanchez, got %+v", page.Results)
	}
	if page.Results[0].Origin.Name != "Earth (C-137)" {
		t.Errorf("Expected origin 'Earth (C-137)', got '%s'", page.Results[0].Origin.Name)
	}
	if len(page.Results[0].Episode) != 2 {
		t.Errorf("Expected 2 episodes, got %d", len(page.Results[0].Episode))
	}
}

func TestListCharactersOmitsDefaults(t *testing.T) {
	var rawQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"info":{"count":0,"pages":1},"results":[]}`))
	})

	if _, err := client.ListCharacters(context.Background(), Query{Name: "   ", Page: 1}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rawQuery != "" {
		t.Errorf("Expected empty query string, got '%s'", rawQuery)
	}
}

func TestListCharactersErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		kind     Kind
		notFound bool
	}{
		{"no match", http.StatusNotFound, `{"error":"There is nothing here"}`, ServiceError, true},
		{"server error", http.StatusInternalServerError, `oops`, ServiceError, false},
		{"bad json", http.StatusOK, `{"info":`, MalformedPayload, false},
		{"zero pages", http.StatusOK, `{"info":{"pages":0},"results":[]}`, MalformedPayload, false},
		{"bad id", http.StatusOK, `{"info":{"pages":1},"results":[{"id":0,"name":"x"}]}`, MalformedPayload, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.ListCharacters(context.Background(), Query{Name: "zzz"})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if KindOf(err) != tt.kind {
				t.Errorf("Expected kind %s, got %s (%v)", tt.kind, KindOf(err), err)
			}
			if IsNotFound(err) != tt.notFound {
				t.Errorf("Expected IsNotFound=%v, got %v", tt.notFound, IsNotFound(err))
			}
		})
	}
}

func TestListCharactersNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := NewClient(base, time.Second)
	_, err := client.ListCharacters(context.Background(), Query{})
	if KindOf(err) != NetworkFailure {
		t.Fatalf("Expected network failure, got %v", err)
	}

	var de *Error
	if !errors.As(err, &de) || de.Op != "list" {
		t.Errorf("Expected *Error with op 'list', got %#v", err)
	}
}

func TestGetCharacter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/character/1":
			_, _ = w.Write([]byte(rickJSON))
		case "/character/2":
			_, _ = w.Write([]byte(rickJSON)) // wrong record
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Character not found"}`))
		}
	})

	ch, err := client.GetCharacter(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ch.Name != "Rick Sanchez" || ch.Location.Name != "Citadel of Ricks" {
		t.Errorf("Unexpected character: %+v", ch)
	}

	if _, err := client.GetCharacter(context.Background(), 2); KindOf(err) != MalformedPayload {
		t.Errorf("Expected malformed payload for mismatched id, got %v", err)
	}

	_, err = client.GetCharacter(context.Background(), 9999)
	if !IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
	if err != nil && err.Error() == "" {
		t.Error("Expected non-empty error message")
	}

	if _, err := client.GetCharacter(context.Background(), 0); !IsNotFound(err) {
		t.Errorf("Expected not found for id 0, got %v", err)
	}
}
