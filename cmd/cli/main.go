package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"animespotlight/internal/client"
	"animespotlight/internal/form"
	"animespotlight/internal/store"
	"animespotlight/internal/validate"
	"animespotlight/pkg/models"
)

func main() {
	global := flag.NewFlagSet("animespotlight", flag.ExitOnError)
	baseURL := global.String("api", client.DefaultBaseURL, "API base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	api := client.New(*baseURL)

	switch cmd {
	case "animes":
		handleAnimes(ctx, api, sub, args[2:])
	case "watch":
		handleWatch(*baseURL, sub, args[2:])
	case "export":
		handleExport(ctx, api, sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAnimes(ctx context.Context, api *client.Client, sub string, args []string) {
	switch sub {
	case "list":
		st := store.New(nil)
		st.Apply(store.Action{Type: store.Start})

		animes, err := api.List(ctx)
		if err != nil {
			st.Apply(store.Action{Type: store.End, Err: err.Error()})
			log.Fatalf("list failed: %v", err)
		}
		st.Apply(store.Action{Type: store.SetList, Animes: animes})
		st.Apply(store.Action{Type: store.End})

		printList(st.State().Animes)
	case "show":
		fs := flag.NewFlagSet("animes show", flag.ExitOnError)
		id := fs.Int64("id", 0, "anime id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("id is required")
		}

		a, err := api.GetByID(ctx, *id)
		if err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(a)
	case "create":
		session := form.NewSession()
		promptAll(session)
		submitSession(ctx, session, func(ctx context.Context, f models.AnimeFields) error {
			a, err := api.Create(ctx, f)
			if err != nil {
				return err
			}
			fmt.Printf("✅ created anime %d: %s\n", a.ID, a.Title)
			return nil
		})
	case "edit":
		fs := flag.NewFlagSet("animes edit", flag.ExitOnError)
		id := fs.Int64("id", 0, "anime id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("id is required")
		}

		current, err := api.GetByID(ctx, *id)
		if err != nil {
			log.Fatalf("fetch failed: %v", err)
		}

		session := form.NewEditSession(current)
		promptAll(session)
		submitSession(ctx, session, func(ctx context.Context, f models.AnimeFields) error {
			a, err := api.UpdateByID(ctx, *id, f)
			if err != nil {
				return err
			}
			fmt.Printf("✅ updated anime %d: %s\n", a.ID, a.Title)
			return nil
		})
	case "delete":
		fs := flag.NewFlagSet("animes delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "anime id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("id is required")
		}

		if err := api.DeleteByID(ctx, *id); err != nil {
			if errors.Is(err, client.ErrNotFound) {
				log.Fatalf("anime %d not found", *id)
			}
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Printf("✅ deleted anime %d\n", *id)
	default:
		log.Fatal("usage: animespotlight animes <list|show|create|edit|delete>")
	}
}

// promptAll walks the draft field by field. Pressing enter keeps the current
// value, which is what makes edit sessions usable.
func promptAll(s *form.Session) {
	in := bufio.NewScanner(os.Stdin)
	f := s.Fields()

	promptText(in, s, validate.FieldTitle, "Title", f.Title)
	promptText(in, s, validate.FieldEnTitle, "English title", deref(f.EnTitle))
	promptText(in, s, validate.FieldDescription, "Description", f.Description)
	promptText(in, s, validate.FieldPosterImage, "Poster image URL", f.PosterImage)
	promptText(in, s, validate.FieldCoverImage, "Cover image URL", deref(f.CoverImage))

	if v, ok := prompt(in, "Subtype (ONA/OVA/TV/movie)", string(s.Fields().Subtype)); ok {
		s.SetSubtype(models.Subtype(v))
		printFieldError(s, validate.FieldSubtype)
	}
	if v, ok := prompt(in, "Status (current/finished/upcoming)", string(s.Fields().Status)); ok {
		s.SetStatus(models.Status(v))
		for _, fd := range []validate.Field{validate.FieldStatus, validate.FieldRating, validate.FieldStartDate, validate.FieldEndDate, validate.FieldEpisodeCount} {
			printFieldError(s, fd)
		}
	}

	if v, ok := prompt(in, "Start date (YYYY-MM-DD)", deref(s.Fields().StartDate)); ok {
		s.SetStartDate(optString(v))
		printFieldError(s, validate.FieldStartDate)
		printFieldError(s, validate.FieldEndDate)
	}
	if v, ok := prompt(in, "End date (YYYY-MM-DD)", deref(s.Fields().EndDate)); ok {
		s.SetEndDate(optString(v))
		printFieldError(s, validate.FieldEndDate)
	}

	if v, ok := prompt(in, "Rating (0-10, half steps)", formatRating(s.Fields().Rating)); ok {
		s.SetRating(parseRating(v))
		printFieldError(s, validate.FieldRating)
	}
	if v, ok := prompt(in, "Episode count", formatCount(s.Fields().EpisodeCount)); ok {
		s.SetEpisodeCount(parseCount(v))
		s.BlurEpisodeCount()
		printFieldError(s, validate.FieldEpisodeCount)
	}

	promptCategories(in, s)
}

func promptText(in *bufio.Scanner, s *form.Session, fd validate.Field, label, current string) {
	if v, ok := prompt(in, label, current); ok {
		s.SetText(fd, v)
	}
	s.BlurText(fd)
	printFieldError(s, fd)
}

func promptCategories(in *bufio.Scanner, s *form.Session) {
	for i, c := range s.Fields().Categories {
		if v, ok := prompt(in, fmt.Sprintf("Category %d", i+1), c); ok {
			s.SetCategory(i, v)
		}
		s.BlurCategory(i)
	}
	for {
		v, ok := prompt(in, "Add category (blank to stop)", "")
		if !ok || v == "" {
			break
		}
		s.AddCategory()
		idx := len(s.Fields().Categories) - 1
		s.SetCategory(idx, v)
		s.BlurCategory(idx)
	}
	printFieldError(s, validate.FieldCategories)
}

// prompt returns (input, true) when the user typed something, (_, false) when
// they kept the current value.
func prompt(in *bufio.Scanner, label, current string) (string, bool) {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	if !in.Scan() {
		return "", false
	}
	v := strings.TrimSpace(in.Text())
	if v == "" {
		return "", false
	}
	return v, true
}

func submitSession(ctx context.Context, s *form.Session, submit func(context.Context, models.AnimeFields) error) {
	err := s.Submit(ctx, submit)
	if err == nil {
		return
	}
	if errors.Is(err, form.ErrInvalidFields) || errors.Is(err, form.ErrInvalidDraft) {
		fmt.Fprintln(os.Stderr, "❌ "+err.Error())
		printErrors(s.Errors())
		os.Exit(1)
	}

	var br *client.BadRequestError
	if errors.As(err, &br) {
		fmt.Fprintln(os.Stderr, "❌ rejected by the server: "+br.Message)
		printErrors(br.Fields)
		os.Exit(1)
	}
	log.Fatalf("submit failed: %v", err)
}

func printErrors(errs validate.Errors) {
	fields := make([]string, 0, len(errs))
	for fd := range errs {
		fields = append(fields, string(fd))
	}
	sort.Strings(fields)
	for _, fd := range fields {
		fe := errs[validate.Field(fd)]
		if fe.Message != "" {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", fd, fe.Message)
		}
		if fe.General != "" {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", fd, fe.General)
		}
		for idx, msg := range fe.Items {
			fmt.Fprintf(os.Stderr, "  %s[%d]: %s\n", fd, idx, msg)
		}
	}
}

func printFieldError(s *form.Session, fd validate.Field) {
	fe, ok := s.Errors()[fd]
	if !ok {
		return
	}
	if fe.Message != "" {
		fmt.Fprintf(os.Stderr, "  ⚠ %s: %s\n", fd, fe.Message)
	}
	if fe.General != "" {
		fmt.Fprintf(os.Stderr, "  ⚠ %s: %s\n", fd, fe.General)
	}
	for idx, msg := range fe.Items {
		fmt.Fprintf(os.Stderr, "  ⚠ %s[%d]: %s\n", fd, idx, msg)
	}
}

func handleWatch(baseURL, sub string, args []string) {
	switch sub {
	case "tcp":
		fs := flag.NewFlagSet("watch tcp", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP event feed address")
		pretty := fs.Bool("pretty", true, "pretty print JSON events")
		_ = fs.Parse(args)
		for {
			if err := watchTCP(*addr, *pretty); err != nil {
				log.Printf("[watch] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	case "ws":
		fs := flag.NewFlagSet("watch ws", flag.ExitOnError)
		wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
		_ = fs.Parse(args)

		endpoint := *wsURL
		if endpoint == "" {
			var err error
			endpoint, err = websocketURL(baseURL, "/ws")
			if err != nil {
				log.Fatalf("ws url: %v", err)
			}
		}
		if err := watchWS(endpoint); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	default:
		log.Fatal("usage: animespotlight watch <tcp|ws>")
	}
}

func handleExport(ctx context.Context, api *client.Client, sub string, args []string) {
	switch sub {
	case "json":
		fs := flag.NewFlagSet("export json", flag.ExitOnError)
		out := fs.String("out", "data/animes.json", "output JSON path")
		_ = fs.Parse(args)

		animes, err := api.List(ctx)
		if err != nil {
			log.Fatalf("export json failed: %v", err)
		}
		if err := writeJSON(*out, animes); err != nil {
			log.Fatalf("write json failed: %v", err)
		}
		log.Printf("✅ exported %d entries to %s", len(animes), *out)
	case "csv":
		fs := flag.NewFlagSet("export csv", flag.ExitOnError)
		out := fs.String("out", "data/animes.csv", "output CSV path")
		_ = fs.Parse(args)

		animes, err := api.List(ctx)
		if err != nil {
			log.Fatalf("export csv failed: %v", err)
		}
		if err := writeCSV(*out, animes); err != nil {
			log.Fatalf("write csv failed: %v", err)
		}
		log.Printf("✅ exported %d entries to %s", len(animes), *out)
	default:
		log.Fatal("usage: animespotlight export <json|csv>")
	}
}

func watchTCP(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[watch] connected to %s", addr)
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		line := reader.Bytes()
		if !pretty {
			fmt.Println(string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func watchWS(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[watch] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func printList(animes []models.Anime) {
	if len(animes) == 0 {
		fmt.Println("no entries")
		return
	}
	for _, a := range animes {
		rating := "-"
		if a.Rating != nil {
			rating = strconv.FormatFloat(*a.Rating, 'f', -1, 64)
		}
		fmt.Printf("%4d  %-40s  %-8s  %s\n", a.ID, a.Title, a.Status, rating)
	}
	fmt.Printf("%d entries\n", len(animes))
}

func writeJSON(path string, animes []models.Anime) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(animes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(path string, animes []models.Anime) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, a := range animes {
		if err := writer.Write(csvRecord(a)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func csvHeader() []string {
	return []string{
		"id", "title", "en_title", "description", "rating", "start_date", "end_date",
		"subtype", "status", "poster_image", "cover_image", "episode_count", "categories",
	}
}

func csvRecord(a models.Anime) []string {
	return []string{
		strconv.FormatInt(a.ID, 10),
		a.Title,
		deref(a.EnTitle),
		a.Description,
		formatRating(a.Rating),
		deref(a.StartDate),
		deref(a.EndDate),
		string(a.Subtype),
		string(a.Status),
		a.PosterImage,
		deref(a.CoverImage),
		formatCount(a.EpisodeCount),
		strings.Join(a.Categories, "|"),
	}
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func formatRating(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func parseRating(v string) *float64 {
	r, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &r
}

func formatCount(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func parseCount(v string) *int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func printUsage() {
	fmt.Println("animespotlight <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  animes list|show|create|edit|delete")
	fmt.Println("  watch tcp|ws")
	fmt.Println("  export json|csv")
}
