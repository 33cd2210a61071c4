package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"diabetes-api/internal/common"
	"diabetes-api/internal/dataset"

	"github.com/rs/zerolog/log"
)

func main() {
	var (
		out  = flag.String("out", common.DefaultDataPath, "Output CSV path")
		rows = flag.Int("rows", 5000, "Number of rows to generate")
		seed = flag.Int64("seed", 42, "Random seed")
	)
	flag.Parse()

	common.SetupLogger("info", common.LogFormatConsole)

	fmt.Printf("Generating synthetic survey data...\n")
	fmt.Printf("  Rows: %d\n", *rows)
	fmt.Printf("  Seed: %d\n", *seed)
	fmt.Printf("  Output: %s\n", *out)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Str("path", *out).Msg("failed to create output file")
	}
	w := bufio.NewWriter(f)
	if err := dataset.Generate(w, *rows, *seed); err != nil {
		f.Close()
		log.Fatal().Err(err).Msg("failed to generate data")
	}
	if err := w.Flush(); err != nil {
		f.Close()
		log.Fatal().Err(err).Msg("failed to write data")
	}
	if err := f.Close(); err != nil {
		log.Fatal().Err(err).Msg("failed to close output file")
	}

	fmt.Printf("✓ Generated %d rows in %s\n", *rows, *out)
}
