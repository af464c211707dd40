// Seeds the commerce catalog from a menu file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/pizzadrive/orderbot/internal/auth"
	"github.com/pizzadrive/orderbot/internal/commerce"
	"github.com/pizzadrive/orderbot/internal/config"
)

func main() {
	_ = godotenv.Load()
	menuPath := flag.String("menu", "data/menu.json", "path to the menu file")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	guard := auth.NewGuard(commerce.TokenSource(cfg.CommerceBaseURL, cfg.CommerceClientID, cfg.CommerceClientSecret, nil))
	backend := commerce.NewClient(cfg.CommerceBaseURL, guard)

	raw, err := os.ReadFile(*menuPath)
	if err != nil {
		log.Fatalf("read menu: %v", err)
	}
	var seeds []commerce.ProductSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		log.Fatalf("decode menu: %v", err)
	}

	for _, seed := range seeds {
		productID, err := backend.CreateProduct(ctx, seed)
		if err != nil {
			log.Printf("create product %q: %v", seed.Name, err)
			continue
		}
		if seed.ImageURL == "" {
			log.Printf("created %q (%s), no image", seed.Name, productID)
			continue
		}
		fileID, err := backend.CreateFile(ctx, seed.ImageURL)
		if err != nil {
			log.Printf("create file for %q: %v", seed.Name, err)
			continue
		}
		if err := backend.LinkMainImage(ctx, productID, fileID); err != nil {
			log.Printf("link image for %q: %v", seed.Name, err)
			continue
		}
		log.Printf("created %q (%s)", seed.Name, productID)
	}
}
