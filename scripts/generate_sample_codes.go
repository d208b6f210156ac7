package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// generateSampleCodes writes a sample promo code definition file for local
// development: data/promos/sample_codes.csv.gz, importable with promo-import.
func main() {
	dataDir := "data/promos"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	records := []string{
		"# code,type,value,min_subtotal,max_redemptions,per_user_limit,starts_at,expires_at",
		"SAVE10,PERCENTAGE,10,,100,,,",
		"SAVE25,PERCENTAGE,25,250.00,,1,,",
		"FIXED20,FIXED_AMOUNT,20.00,,,,,",
		"LAUNCH50,PERCENTAGE,50,,500,1,2026-01-01T00:00:00Z,2026-03-31T23:59:59Z",
		"WELCOME5,FIXED_AMOUNT,5.00,,,1,,",
	}

	filePath := filepath.Join(dataDir, "sample_codes.csv.gz")
	if err := writeDefinitionFile(filePath, records); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d codes\n", filePath, len(records)-1)
}

func writeDefinitionFile(path string, records []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := gzip.NewWriter(file)
	if _, err := writer.Write([]byte(strings.Join(records, "\n") + "\n")); err != nil {
		writer.Close()
		return err
	}

	return writer.Close()
}
