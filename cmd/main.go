package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"cleancity/backend/internal/api/handler"
	"cleancity/backend/internal/blob"
	"cleancity/backend/internal/logger"
	"cleancity/backend/internal/models"
	"cleancity/backend/internal/notify"
	"cleancity/backend/internal/storage"
	"cleancity/backend/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setupDependencies(log *logrus.Logger) (*gorm.DB, *redis.Client) {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=user password=password dbname=cleancitydb port=5432 sslmode=disable")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect PostgreSQL")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.WithError(err).Fatal("Failed to connect Redis")
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.Action{},
		&models.RewardAccount{},
		&models.Notification{},
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// At most one live action per complaint, enforced at the store level.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_live_action_per_complaint
		ON actions (complaint_id)
		WHERE status IN ('in_progress', 'under_review')`).Error
	if err != nil {
		log.WithError(err).Fatal("Failed to create live action index")
	}

	log.Info("Database and Redis connections established, migrations complete")
	return db, rdb
}

func main() {
	log := logger.New("cleancity-backend")
	log.Info("Starting CleanCity Backend...")

	if err := godotenv.Load(); err != nil {
		log.Warn("Warning: Error loading .env file")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db, rdb := setupDependencies(log)
	s := storage.NewStorageService(db, rdb, log)

	blobs, err := blob.NewFSStore(getEnv("BLOB_DIR", "./blobs"))
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize blob store")
	}

	wf := workflow.NewService(s, blobs, log)
	nt := notify.NewService(s)
	h := handler.NewHandler(wf, nt, s, []byte(secret), log)

	r := gin.Default()
	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:           getEnv("LISTEN_ADDR", ":8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.WithField("addr", server.Addr).Info("Listening")
	log.Fatal(server.ListenAndServe())
}
