package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"splynt/config"
	"splynt/gemini"
	"splynt/handlers"
	"splynt/session"
	"splynt/store"
	"splynt/templates"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	var archive *store.Archive
	if cfg.ArchivePath != "" {
		archive, err = store.Open(cfg.ArchivePath)
		if err != nil {
			log.Fatal(err)
		}
		defer archive.Close()
	}

	manager := session.NewManager()
	go func() {
		for range time.Tick(15 * time.Minute) {
			if n := manager.Prune(); n > 0 {
				log.Printf("pruned %d idle sessions", n)
			}
		}
	}()

	h := &handlers.Handler{
		Gateway: gemini.New(client.GenerativeModel(cfg.ModelName)),
		Manager: manager,
		Archive: archive,
		Timeout: cfg.GenerationTimeout,
	}

	mux := http.NewServeMux()

	fs := http.FileServer(http.Dir("./static"))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		templates.Index("Splynt - Try to get hired").Render(r.Context(), w)
	})

	mux.HandleFunc("/start", h.Start)
	mux.HandleFunc("/door", h.OpenDoor)
	mux.HandleFunc("/choice", h.Choice)
	mux.HandleFunc("/respond", h.Respond)
	mux.HandleFunc("/exit", h.Exit)
	mux.HandleFunc("/restart", h.Restart)
	mux.HandleFunc("/logs", h.Logs)
	mux.HandleFunc("/games", h.Games)
	mux.HandleFunc("/download", h.Download)

	log.Printf("Listening on http://%s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, mux))
}
