package main

import (
	"log"
	"os"
	"path/filepath"

	"gogPriceBot/internal/config"
	"gogPriceBot/internal/gogdb"
	"gogPriceBot/internal/resolver"
	"gogPriceBot/internal/server"
	"gogPriceBot/internal/storage"
	"gogPriceBot/internal/telegram"
)

func main() {
	cfg := config.Load()

	var cache storage.KV
	if cfg.RedisAddr != "" {
		kv, err := storage.NewRedisKV(cfg.RedisAddr)
		if err != nil {
			log.Fatal(err)
		}
		defer kv.Close()
		cache = kv
		log.Printf("cache: using redis at %s", cfg.RedisAddr)
	} else {
		// Ensure parent directory for the DB exists
		_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755)
		db, err := storage.OpenSQLite("file:" + cfg.DBPath + "?_fk=1")
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		if err := storage.InitSchema(db); err != nil {
			log.Fatal(err)
		}
		cache = storage.NewSQLiteKV(db)
		log.Printf("cache: using sqlite at %s", cfg.DBPath)
	}

	fetcher := gogdb.NewClient(nil, cfg.GOGDBBaseURL, cache)
	res := resolver.New(nil)

	tg, err := telegram.NewBot(cfg.TelegramToken, cfg.WebhookPublicURL, fetcher, res, cfg.OpenAIKey)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("telegram: bot initialized, webhook target %s", cfg.WebhookPublicURL)

	mux := server.NewHTTPMux(tg.WebhookHandler) // registers /telegram/webhook
	addr := ":" + cfg.Port
	log.Println("http: listening on", addr)
	if err := server.ListenAndServe(addr, mux); err != nil {
		log.Println("server error:", err)
		os.Exit(1)
	}
}
