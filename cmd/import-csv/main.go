package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"animespotlight/internal/validate"
	"animespotlight/pkg/database"
	"animespotlight/pkg/models"
)

func main() {
	var (
		in     = flag.String("animes", "data/animes.csv", "input CSV path for anime entries")
		strict = flag.Bool("strict", false, "fail on the first invalid row instead of skipping")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	imported, skipped, err := importAnimes(ctx, db, *in, *strict)
	if err != nil {
		log.Fatalf("import animes failed: %v", err)
	}

	log.Printf("✅ imported %d entries from %s (%d skipped)", imported, *in, skipped)
}

func importAnimes(ctx context.Context, db *sql.DB, path string, strict bool) (imported, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, 0, err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO anime (title, en_title, description, rating, start_date, end_date,
			subtype, status, poster_image, cover_image, episode_count, categories,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, skipped, err
		}
		line++
		if len(row) == 0 {
			continue
		}

		fields, err := rowToFields(header, row)
		if err != nil {
			if strict {
				return imported, skipped, fmt.Errorf("line %d: %w", line, err)
			}
			log.Printf("skipping line %d: %v", line, err)
			skipped++
			continue
		}

		if errs := validate.All(fields, now); !errs.Empty() {
			if strict {
				return imported, skipped, fmt.Errorf("line %d (%q): %s", line, fields.Title, describeErrors(errs))
			}
			log.Printf("skipping line %d (%q): %s", line, fields.Title, describeErrors(errs))
			skipped++
			continue
		}

		categories, err := json.Marshal(fields.Categories)
		if err != nil {
			return imported, skipped, err
		}

		if _, err := stmt.ExecContext(
			ctx,
			fields.Title, fields.EnTitle, fields.Description, fields.Rating,
			fields.StartDate, fields.EndDate, string(fields.Subtype), string(fields.Status),
			fields.PosterImage, fields.CoverImage, fields.EpisodeCount, string(categories),
			now, now,
		); err != nil {
			return imported, skipped, err
		}
		imported++
	}

	return imported, skipped, nil
}

func rowToFields(header map[string]int, row []string) (models.AnimeFields, error) {
	rating, err := parseOptFloat(valueAt(header, row, "rating"))
	if err != nil {
		return models.AnimeFields{}, fmt.Errorf("parse rating: %w", err)
	}
	episodeCount, err := parseOptInt(valueAt(header, row, "episode_count"))
	if err != nil {
		return models.AnimeFields{}, fmt.Errorf("parse episode_count: %w", err)
	}

	categories := []string{}
	if raw := valueAt(header, row, "categories"); raw != "" {
		categories = strings.Split(raw, "|")
	}

	return models.AnimeFields{
		Title:        valueAt(header, row, "title"),
		EnTitle:      optString(valueAt(header, row, "en_title")),
		Description:  valueAt(header, row, "description"),
		Rating:       rating,
		StartDate:    optString(valueAt(header, row, "start_date")),
		EndDate:      optString(valueAt(header, row, "end_date")),
		Subtype:      models.Subtype(valueAt(header, row, "subtype")),
		Status:       models.Status(valueAt(header, row, "status")),
		PosterImage:  valueAt(header, row, "poster_image"),
		CoverImage:   optString(valueAt(header, row, "cover_image")),
		EpisodeCount: episodeCount,
		Categories:   categories,
	}, nil
}

func describeErrors(errs validate.Errors) string {
	parts := make([]string, 0, len(errs))
	for fd, fe := range errs {
		switch {
		case fe.Message != "":
			parts = append(parts, string(fd)+" "+fe.Message)
		case fe.General != "":
			parts = append(parts, string(fd)+" "+fe.General)
		default:
			parts = append(parts, string(fd)+" invalid")
		}
	}
	return strings.Join(parts, "; ")
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

func optString(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

func parseOptFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseOptInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
