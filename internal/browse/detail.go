package browse

import (
	"context"
	"log"

	"rickdex/internal/directory"
	"rickdex/pkg/models"
)

// CharacterFetcher retrieves a single character.
type CharacterFetcher interface {
	GetCharacter(ctx context.Context, id int) (*models.Character, error)
}

// DetailPhase distinguishes a detail view that is still loading from one
// whose fetch failed.
type DetailPhase int

const (
	DetailLoading DetailPhase = iota
	DetailFailed
	DetailLoaded
)

func (p DetailPhase) String() string {
	switch p {
	case DetailLoading:
		return "loading"
	case DetailFailed:
		return "failed"
	case DetailLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

func (p DetailPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Detail is the renderable state of a character detail view.
type Detail struct {
	ID        int
	Phase     DetailPhase
	Character *models.Character
	Err       error
}

// LoadDetail fetches character id. notify, when non-nil, first receives the
// loading state and then exactly one terminal state, which is also returned.
func LoadDetail(ctx context.Context, f CharacterFetcher, id int, notify func(Detail)) Detail {
	if notify == nil {
		notify = func(Detail) {}
	}
	notify(Detail{ID: id, Phase: DetailLoading})

	ch, err := f.GetCharacter(ctx, id)
	var d Detail
	if err != nil {
		if !directory.IsNotFound(err) {
			log.Printf("[browse] detail %d: %v", id, err)
		}
		d = Detail{ID: id, Phase: DetailFailed, Err: err}
	} else {
		d = Detail{ID: id, Phase: DetailLoaded, Character: ch}
	}
	notify(d)
	return d
}
