package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-books-api/config"
	"github.com/oksasatya/go-books-api/internal/seed"
	"github.com/oksasatya/go-books-api/pkg/helpers"
)

func main() {
	importPath := flag.String("import", "", "JSON file of books to insert")
	deleteAll := flag.Bool("delete", false, "delete every book")
	demoUser := flag.Bool("demo-user", false, "create the demo user pika@example.com / test1234")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if *importPath == "" && !*deleteAll && !*demoUser {
		flag.Usage()
		os.Exit(2)
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("failed to open db")
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *deleteAll {
		n, err := seed.DeleteAll(ctx, db)
		if err != nil {
			logger.WithError(err).Fatal("failed to delete books")
		}
		logger.WithField("deleted", n).Info("books deleted")
	}

	if *importPath != "" {
		f, err := os.Open(*importPath)
		if err != nil {
			logger.WithError(err).Fatal("failed to open data file")
		}
		books, err := seed.Load(f)
		_ = f.Close()
		if err != nil {
			logger.WithError(err).Fatal("failed to read books")
		}
		n, err := seed.Import(ctx, db, books)
		if err != nil {
			logger.WithError(err).Fatal("failed to import books")
		}
		logger.WithFields(logrus.Fields{"file": *importPath, "read": len(books), "inserted": n}).Info("books imported")
	}

	if *demoUser {
		hash, err := helpers.HashPassword("test1234")
		if err != nil {
			logger.WithError(err).Fatal("failed to hash password")
		}
		id, err := seed.UpsertUser(ctx, db, "Pikachu", "pika@example.com", hash)
		if err != nil {
			logger.WithError(err).Fatal("failed to seed user")
		}
		logger.WithFields(logrus.Fields{"id": id, "email": "pika@example.com"}).Info("demo user ready")
	}
}
