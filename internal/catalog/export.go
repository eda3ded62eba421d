package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rickdex/pkg/models"
)

var csvHeader = []string{
	"id", "name", "status", "species", "type", "gender",
	"origin", "location", "image", "episodes", "url", "created",
}

// All pages through every character matching q, ignoring q.Limit and
// q.Offset.
func All(ctx context.Context, r *Repo, q ListQuery) ([]models.Character, error) {
	q.Limit = 100
	q.Offset = 0

	var out []models.Character
	for {
		batch, err := r.List(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(batch) < q.Limit {
			return out, nil
		}
		q.Offset += len(batch)
	}
}

// WriteCSV writes one row per character. Episodes are joined with ';'.
func WriteCSV(w io.Writer, chars []models.Character) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range chars {
		if err := cw.Write([]string{
			strconv.Itoa(c.ID),
			c.Name,
			c.Status,
			c.Species,
			c.Type,
			c.Gender,
			c.Origin.Name,
			c.Location.Name,
			c.Image,
			strings.Join(c.Episode, ";"),
			c.URL,
			c.Created,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteCSVFile(path string, chars []models.Character) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, chars) })
}

func WriteJSONFile(path string, chars []models.Character) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(chars)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses rows written by WriteCSV. Columns are matched by header
// name, so extra or reordered columns are fine. Rows without a valid id or
// a name are skipped.
func ReadCSV(r io.Reader) ([]models.Character, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	var out []models.Character
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		id, err := strconv.Atoi(valueAt(header, row, "id"))
		name := valueAt(header, row, "name")
		if err != nil || id < 1 || name == "" {
			continue
		}

		c := models.Character{
			ID:       id,
			Name:     name,
			Status:   valueAt(header, row, "status"),
			Species:  valueAt(header, row, "species"),
			Type:     valueAt(header, row, "type"),
			Gender:   valueAt(header, row, "gender"),
			Origin:   models.Place{Name: valueAt(header, row, "origin")},
			Location: models.Place{Name: valueAt(header, row, "location")},
			Image:    valueAt(header, row, "image"),
			Episode:  []string{},
			URL:      valueAt(header, row, "url"),
			Created:  valueAt(header, row, "created"),
		}
		if eps := valueAt(header, row, "episodes"); eps != "" {
			c.Episode = strings.Split(eps, ";")
		}
		out = append(out, c)
	}
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
