package directory

import (
	"context"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"rickdex/pkg/models"
)

// sharedLookupTimeout bounds an upstream lookup shared by several callers.
const sharedLookupTimeout = 30 * time.Second

// Fetcher is implemented by Client and by Cached.
type Fetcher interface {
	ListCharacters(ctx context.Context, q Query) (*models.CharacterPage, error)
	GetCharacter(ctx context.Context, id int) (*models.Character, error)
}

// Store persists characters we have seen. catalog.Repo implements it.
type Store interface {
	Upsert(ctx context.Context, chars []models.Character) error
	GetByID(ctx context.Context, id int) (*models.Character, error)
}

// Cached wraps an upstream Fetcher and writes every character it sees to a
// Store. Single-character lookups are answered from the store when possible.
type Cached struct {
	Upstream Fetcher
	Store    Store

	group singleflight.Group
}

func NewCached(upstream Fetcher, store Store) *Cached {
	return &Cached{Upstream: upstream, Store: store}
}

func (c *Cached) ListCharacters(ctx context.Context, q Query) (*models.CharacterPage, error) {
	page, err := c.Upstream.ListCharacters(ctx, q)
	if err != nil {
		return nil, err
	}
	c.persist(ctx, page.Results)
	return page, nil
}

func (c *Cached) GetCharacter(ctx context.Context, id int) (*models.Character, error) {
	if c.Store != nil {
		ch, err := c.Store.GetByID(ctx, id)
		if err != nil {
			log.Printf("[directory] cache lookup %d: %v", id, err)
		} else if ch != nil {
			return ch, nil
		}
	}

	// The shared lookup outlives any one caller; each caller waits on its
	// own ctx.
	result := c.group.DoChan(strconv.Itoa(id), func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()

		ch, err := c.Upstream.GetCharacter(sctx, id)
		if err != nil {
			return nil, err
		}
		c.persist(sctx, []models.Character{*ch})
		return ch, nil
	})

	select {
	case <-ctx.Done():
		return nil, &Error{Op: "get", Kind: NetworkFailure, Err: ctx.Err()}
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		out := *res.Val.(*models.Character)
		return &out, nil
	}
}

// persist failures are logged; the caller still gets its data.
func (c *Cached) persist(ctx context.Context, chars []models.Character) {
	if c.Store == nil || len(chars) == 0 {
		return
	}
	if err := c.Store.Upsert(ctx, chars); err != nil {
		log.Printf("[directory] cache upsert of %d characters: %v", len(chars), err)
	}
}
