package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"animespotlight/pkg/database"
)

func main() {
	out := flag.String("animes", "data/animes.csv", "output CSV path for anime entries")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	n, err := exportAnimes(ctx, db, *out)
	if err != nil {
		log.Fatalf("export animes failed: %v", err)
	}

	log.Printf("✅ exported %d entries to %s", n, *out)
}

func exportAnimes(ctx context.Context, db *sql.DB, outPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "title", "en_title", "description", "rating", "start_date", "end_date",
		"subtype", "status", "poster_image", "cover_image", "episode_count", "categories",
	}); err != nil {
		return 0, err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, title, en_title, description, rating, start_date, end_date,
            subtype, status, poster_image, cover_image, episode_count, categories
        FROM anime
        ORDER BY title
    `)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			id           int64
			title        string
			enTitle      sql.NullString
			description  string
			rating       sql.NullFloat64
			startDate    sql.NullString
			endDate      sql.NullString
			subtype      string
			status       string
			posterImage  string
			coverImage   sql.NullString
			episodeCount sql.NullInt64
			categories   string
		)

		if err := rows.Scan(&id, &title, &enTitle, &description, &rating, &startDate,
			&endDate, &subtype, &status, &posterImage, &coverImage, &episodeCount, &categories); err != nil {
			return count, err
		}

		ratingStr := ""
		if rating.Valid {
			ratingStr = strconv.FormatFloat(rating.Float64, 'f', -1, 64)
		}
		episodes := ""
		if episodeCount.Valid {
			episodes = strconv.FormatInt(episodeCount.Int64, 10)
		}

		var cats []string
		_ = json.Unmarshal([]byte(categories), &cats)

		if err := w.Write([]string{
			strconv.FormatInt(id, 10),
			title,
			enTitle.String,
			description,
			ratingStr,
			startDate.String,
			endDate.String,
			subtype,
			status,
			posterImage,
			coverImage.String,
			episodes,
			strings.Join(cats, "|"),
		}); err != nil {
			return count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, err
	}

	w.Flush()
	return count, w.Error()
}
