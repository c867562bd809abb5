package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"buddy-mind/internal/repository"
	"buddy-mind/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

// insight_check es un harness offline del motor de recall: siembra
// memorias de dos usuarios en un índice chromem con un embedder
// determinista y verifica los invariantes del ranking sin depender de
// Postgres ni de un LLM real.
func main() {
	ctx := context.Background()
	logger := zap.NewNop()

	repo := repository.NewChromemMemoryRepository()
	embedder := newTokenEmbedder(embeddingDim)
	memorySvc := service.NewMemoryService(repo, embedder, embeddingDim, logger)

	userA := "check-user-a"
	userB := "check-user-b"

	messagesA := []string{
		"Today I feel really happy about my new job",
		"I am so anxious about the exam tomorrow",
		"Dinner with friends made me feel grateful",
		"I feel lonely when everyone leaves the office",
		"The traffic this morning was frustrating",
		"I had a peaceful walk by the river",
		"My team won and I feel excited",
		"I feel stressed about the deadline",
		"Rainy days make me feel sad",
		"I am worried about my savings",
		"Helping my neighbor felt joyful",
		"The argument with my brother made me angry",
		"I feel happy when the code compiles",
		"Waiting alone at the station made me feel lonely",
		"I am grateful for my mentor",
	}
	// Textos que se solapan con los de A: si aparecen en los resultados
	// de A hay una fuga entre usuarios.
	messagesB := []string{
		"Today I feel really happy about my new job",
		"I feel lonely when everyone leaves the office",
		"I am worried about my savings",
	}

	idsA := make(map[string]struct{})
	for _, msg := range messagesA {
		id, err := memorySvc.StoreMessage(ctx, userA, msg)
		if err != nil {
			log.Fatalf("store for %s failed: %v", userA, err)
		}
		idsA[id.String()] = struct{}{}
	}
	for _, msg := range messagesB {
		if _, err := memorySvc.StoreMessage(ctx, userB, msg); err != nil {
			log.Fatalf("store for %s failed: %v", userB, err)
		}
	}

	failures := 0
	check := func(name string, ok bool, detail string) {
		if ok {
			fmt.Printf("%s[PASS]%s %s\n", colorGreen, colorReset, name)
			return
		}
		failures++
		fmt.Printf("%s[FAIL]%s %s: %s\n", colorRed, colorReset, name, detail)
	}

	fmt.Printf("%s== insight_check ==%s\n", colorCyan, colorReset)

	// Round-trip: el mismo texto debe volver primero con similitud ~1.
	matches, err := memorySvc.FindSimilar(ctx, userA, messagesA[0], 3)
	if err != nil {
		log.Fatalf("find similar failed: %v", err)
	}
	check("round-trip self match", len(matches) > 0 && matches[0].Message == messagesA[0],
		fmt.Sprintf("got %d matches", len(matches)))
	if len(matches) > 0 {
		check("round-trip similarity ~1.0", matches[0].Similarity > 0.999,
			fmt.Sprintf("similarity=%.4f", matches[0].Similarity))
	}

	insights, err := memorySvc.EmotionalInsights(ctx, userA, nil)
	if err != nil {
		log.Fatalf("emotional insights failed: %v", err)
	}

	check("insights capped at 10", len(insights) <= 10, fmt.Sprintf("got %d", len(insights)))

	seen := make(map[string]struct{})
	duplicated := false
	leaked := false
	unsorted := false
	for i, in := range insights {
		if _, ok := seen[in.MessageID]; ok {
			duplicated = true
		}
		seen[in.MessageID] = struct{}{}
		if _, ok := idsA[in.MessageID]; !ok {
			leaked = true
		}
		if i > 0 && insights[i-1].Similarity < in.Similarity {
			unsorted = true
		}
	}
	check("insights unique by id", !duplicated, "duplicate message id in results")
	check("insights owner isolation", !leaked, "result not stored by owner A")
	check("insights sorted by similarity desc", !unsorted, "ordering violated")

	// El usuario B solo debe ver sus 3 memorias aunque el texto coincida.
	statsB := memorySvc.Stats(ctx, userB)
	check("owner B count", statsB.StoredMessages == len(messagesB),
		fmt.Sprintf("got %d", statsB.StoredMessages))

	fmt.Println()
	if failures > 0 {
		fmt.Printf("%s%d checks failed%s\n", colorRed, failures, colorReset)
		os.Exit(1)
	}
	fmt.Printf("%sall checks passed%s\n", colorGreen, colorReset)
}
