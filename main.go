package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"

	"github.com/tlcdata/ai-agent/config"
	"github.com/tlcdata/ai-agent/controller"
	"github.com/tlcdata/ai-agent/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}

	chatClient := services.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)

	// The pool is shared; each statement checks out its own connection.
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("FATAL: Failed to open postgres pool: %v", err)
	}
	defer db.Close()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("FATAL: Failed to load AWS configuration: %v", err)
	}
	store := services.NewS3Store(s3.NewFromConfig(awsCfg), cfg.BucketName)

	catalog := services.DefaultSchemaCatalog()
	classifier := services.NewIntentClassifier(chatClient, cfg.ModelClassifier)
	genericService := services.NewGenericQAService(chatClient, cfg.ModelGeneric)
	dbService := services.NewDBQAService(chatClient, cfg.ModelDB, catalog, services.NewPostgresQuerier(db), cfg.MaxResultRows)
	docsService := services.NewDocsQAService(chatClient, cfg.ModelDocs, store, cfg.BucketName, cfg.CompanyFilesPrefix, cfg.MaxContextChars)

	askController := controller.NewAskController(classifier, genericService, dbService, docsService)

	// Setup Gin router
	router := gin.Default()
	router.Use(corsMiddleware(cfg.CORSAllowOrigin))

	router.GET("/health", askController.Health)
	router.GET("/", askController.Health)
	router.POST("/ask", askController.Ask)

	log.Printf("AI agent backend starting on http://localhost:%s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Port)
	log.Printf("  POST http://localhost:%s/ask", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
