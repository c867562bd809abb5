package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"buddy-mind/internal/config"
	"buddy-mind/internal/db"
	"buddy-mind/internal/domain"
	"buddy-mind/internal/llm"
	"buddy-mind/internal/repository"
	"buddy-mind/internal/service"
)

const helpText = `Comandos:
  /similar <texto>   busca memorias similares
  /insights          emotional insights del usuario
  /stats             contadores del indice
  /end <resumen>     cierra la sesion y actualiza el perfil
  /profile           muestra el perfil actual
  /quit              salir
Cualquier otra linea se guarda como memoria.`

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	if err := db.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		log.Fatal(err)
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	profileRepo := repository.NewPgProfileRepository(pool)
	memoryRepo := repository.NewPgMemoryRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.EmbeddingModel, cfg.EmbeddingDim, logger)
	extractor := service.NewLLMEvidenceExtractor(llmClient, logger)
	personalitySvc := service.NewPersonalityService(extractor, profileRepo, service.NewLocalProfileLock(), logger)
	memorySvc := service.NewMemoryService(memoryRepo, llmClient, cfg.EmbeddingDim, logger)

	fmt.Print("user id: ")
	userID, _ := reader.ReadString('\n')
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "cli-user"
	}

	fmt.Println(helpText)

	var transcript []domain.TranscriptLine
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			return

		case line == "/profile":
			snap, err := personalitySvc.GetInsights(ctx, userID)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("%s - %s (confianza global %.2f, %d sesiones)\n",
				snap.MBTIType, snap.TypeDescription, snap.Confidence.Overall, snap.SessionsAnalyzed)
			for _, bar := range snap.FacetBars {
				fmt.Printf("  %-12s %s %.2f %s (conf %.2f)\n",
					bar.Dimension, bar.LeftLabel, bar.Score, bar.RightLabel, bar.Confidence)
			}

		case line == "/stats":
			stats := memorySvc.Stats(ctx, userID)
			fmt.Printf("memorias: %d (indice disponible: %v)\n", stats.StoredMessages, stats.IndexAvailable)

		case line == "/insights":
			insights, err := memorySvc.EmotionalInsights(ctx, userID, nil)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			for _, in := range insights {
				fmt.Printf("  [%s %.3f] %s\n", in.DetectedEmotion, in.Similarity, in.Message)
			}
			if len(insights) == 0 {
				fmt.Println("  (sin resultados)")
			}

		case strings.HasPrefix(line, "/similar "):
			query := strings.TrimPrefix(line, "/similar ")
			matches, err := memorySvc.FindSimilar(ctx, userID, query, 5)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			for i, m := range matches {
				fmt.Printf("  %d. [%.3f] %s\n", i+1, m.Similarity, m.Message)
			}
			if len(matches) == 0 {
				fmt.Println("  (sin resultados)")
			}

		case strings.HasPrefix(line, "/end"):
			summary := strings.TrimSpace(strings.TrimPrefix(line, "/end"))
			if summary == "" {
				summary = "CLI session with " + strconv.Itoa(len(transcript)) + " messages"
			}
			snap, err := personalitySvc.ProcessSession(ctx, userID, transcript, summary)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			transcript = nil
			fmt.Printf("perfil actualizado: %s (sesiones %d)\n", snap.MBTIType, snap.SessionsAnalyzed)

		default:
			transcript = append(transcript, domain.TranscriptLine{Speaker: "User", Content: line})
			id, err := memorySvc.StoreMessage(ctx, userID, line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("guardado %s\n", id)
		}
	}
}
