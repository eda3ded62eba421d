// Package crawler walks every page of the character directory and stores
// what it finds in the local catalog.
package crawler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"rickdex/internal/directory"
	"rickdex/pkg/models"
)

type Lister interface {
	ListCharacters(ctx context.Context, q directory.Query) (*models.CharacterPage, error)
}

type Saver interface {
	Upsert(ctx context.Context, chars []models.Character) error
}

type Options struct {
	Name     string // optional name filter
	MaxPages int    // 0 means every page
	Parallel int    // concurrent page fetches, default 4
}

type Report struct {
	Pages      int // pages stored
	Failed     int // pages skipped after an error
	Characters int
}

// Crawl fetches page 1 to learn the page count, then the remaining pages
// with at most opts.Parallel requests in flight. A page that fails is
// logged and skipped. Only a page 1 failure or cancellation is returned.
func Crawl(ctx context.Context, src Lister, dst Saver, opts Options) (Report, error) {
	if opts.Parallel <= 0 {
		opts.Parallel = 4
	}

	first, err := src.ListCharacters(ctx, directory.Query{Name: opts.Name, Page: 1})
	if err != nil {
		if directory.IsNotFound(err) {
			return Report{}, nil
		}
		return Report{}, fmt.Errorf("crawl page 1: %w", err)
	}
	if err := dst.Upsert(ctx, first.Results); err != nil {
		return Report{}, fmt.Errorf("save page 1: %w", err)
	}

	rep := Report{Pages: 1, Characters: len(first.Results)}
	last := first.Info.Pages
	if opts.MaxPages > 0 && last > opts.MaxPages {
		last = opts.MaxPages
	}
	log.Printf("[crawler] %d pages to fetch", last)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)

	for page := 2; page <= last; page++ {
		g.Go(func() error {
			n, err := crawlPage(gctx, src, dst, opts.Name, page)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("[crawler] page %d: %v", page, err)
				rep.Failed++
				return nil
			}
			rep.Pages++
			rep.Characters += n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return rep, fmt.Errorf("crawl: %w", err)
	}
	return rep, nil
}

func crawlPage(ctx context.Context, src Lister, dst Saver, name string, page int) (int, error) {
	res, err := src.ListCharacters(ctx, directory.Query{Name: name, Page: page})
	if err != nil {
		return 0, err
	}
	if err := dst.Upsert(ctx, res.Results); err != nil {
		return 0, fmt.Errorf("save: %w", err)
	}
	return len(res.Results), nil
}
