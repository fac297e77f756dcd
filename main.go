package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"tinyboard/internal/handlers"
	"tinyboard/internal/logging"
	"tinyboard/internal/referee"
	"tinyboard/internal/session"
	"tinyboard/internal/storage"
	"tinyboard/internal/templates"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	debug := flag.Bool("debug", false, "enable debug logging")
	dsn := flag.String("dsn", os.Getenv("TINYBOARD_DSN"), "postgres DSN, empty to run without persistence")
	flag.Parse()
	logging.Debug = *debug

	templates.SetCommit(commit)

	var store *storage.Store
	if *dsn != "" {
		db, err := storage.New(*dsn)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		store = storage.NewStore(db)
	}

	// Initialize session hub
	hub := session.NewHub(store, referee.New())

	// Initialize HTTP handlers
	h := handlers.NewHandler(hub, store)

	// Register routes
	http.HandleFunc("/new", h.HandleNew)
	http.HandleFunc("/sse/", h.HandleSSE)
	http.HandleFunc("/pointer/", h.HandlePointer)
	http.HandleFunc("/ack/", h.HandleAck)
	http.HandleFunc("/position/", h.HandlePosition)
	http.HandleFunc("/moves/", h.HandleMoves)
	http.HandleFunc("/flip/", h.HandleFlip)
	http.HandleFunc("/clear/", h.HandleClear)
	http.HandleFunc("/reset/", h.HandleReset)
	http.HandleFunc("/resize/", h.HandleResize)
	http.HandleFunc("/stats", h.HandleStats)
	http.HandleFunc("/", h.HandlePage)

	log.Printf("Tiny Board listening on http://localhost%s …", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
