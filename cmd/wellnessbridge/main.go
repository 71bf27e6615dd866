package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"wellnessbridge/backend/auth"
	"wellnessbridge/backend/metrics"
	"wellnessbridge/backend/migrations"
	"wellnessbridge/backend/services"
	"wellnessbridge/backend/storage"
	"wellnessbridge/utils/logging"

	"github.com/caarlos0/env/v10"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type serverEnv struct {
	DatabaseUri string `env:"DATABASE_URI,required"`
	JwtSecret   string `env:"JWT_SECRET,required"`
	ShareDir    string `env:"SHARE_DIR" envDefault:"./data"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*"`

	// Optional initial admin account, seeded on first startup.
	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	AdminEmail    string `env:"ADMIN_MAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	RejectDuplicateChildNames bool `env:"REJECT_DUPLICATE_CHILD_NAMES"`
}

func loadEnv(envFile string) serverEnv {
	if envFile != "" {
		slog.Info(fmt.Sprintf("loading env from file %v", envFile))
		if err := godotenv.Load(envFile); err != nil {
			log.Fatalf("error loading .env file '%v': %v", envFile, err)
		}
	}

	var cfg serverEnv
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing environment: %v", err)
	}
	return cfg
}

func postgresDsn(uri string) string {
	parts, err := url.Parse(uri)
	if err != nil {
		log.Fatalf("error parsing db uri: %v", err)
	}
	pwd, _ := parts.User.Password()
	dbname := strings.TrimPrefix(parts.Path, "/")
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v", parts.Hostname(), parts.User.Username(), pwd, dbname, parts.Port())
}

func initDb(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("error opening database connection: %v", err)
	}

	if err := migrations.Migrate(db); err != nil {
		log.Fatalf("error migrating db schema: %v", err)
	}

	return db
}

func main() {
	envFile := flag.String("env", "", "File to load env variables from. If not specified will just load them from the environment variables already defined.")
	port := flag.Int("port", 8000, "Port to run server on")
	flag.Parse()

	cfg := loadEnv(*envFile)

	if err := os.MkdirAll(filepath.Join(cfg.ShareDir, "logs"), 0777); err != nil {
		log.Fatalf("error creating log dir: %v", err)
	}

	logFile, err := os.OpenFile(filepath.Join(cfg.ShareDir, "logs/wellnessbridge.log"), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer logFile.Close()

	logging.Init(logFile, "wellnessbridge")

	db := initDb(postgresDsn(cfg.DatabaseUri))

	identityProvider, err := auth.NewBasicIdentityProvider(
		db,
		auth.NewAttemptLimiter(auth.DefaultMaxAttempts, auth.DefaultAttemptWindow),
		auth.BasicProviderArgs{
			Secret:        []byte(cfg.JwtSecret),
			AdminName:     cfg.AdminName,
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		},
	)
	if err != nil {
		log.Fatalf("error creating identity provider: %v", err)
	}

	files := storage.NewLocalDisk(filepath.Join(cfg.ShareDir, "uploads"))

	backend := services.New(db, identityProvider, files, services.Options{
		RejectDuplicateChildNames: cfg.RejectDuplicateChildNames,
	})

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(metrics.Middleware)

	r.Mount("/api/v1", backend.Routes())
	r.Handle("/metrics", metrics.Handler())

	slog.Info("starting server", "port", *port)
	err = http.ListenAndServe(fmt.Sprintf(":%d", *port), r)
	if err != nil {
		log.Fatalf("listen and serve returned error: %v", err.Error())
	}
}
