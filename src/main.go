package main

import (
	"context"
	"log"
	"net/http"

	"budget-server/src/api"
	"budget-server/src/config"
	"budget-server/src/store"
)

func main() {
	cfg := config.Load()

	// Open the selected persistence backend
	st, err := store.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer st.Close()

	// Router
	router := api.NewRouter(st, cfg)

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
