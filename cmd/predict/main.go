package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"diabetes-api/internal/client"
	"diabetes-api/internal/common"
	"diabetes-api/internal/schema"

	"github.com/rs/zerolog/log"
)

func main() {
	var (
		server  = flag.String("server", "http://localhost:5001", "Prediction service base URL")
		timeout = flag.Duration("timeout", 5*time.Second, "Request timeout")
		health  = flag.Bool("health", false, "Only check service health")
	)
	values := make(map[string]*string, len(schema.Features))
	for _, f := range schema.Features {
		values[f.Field] = flag.String(f.Field, "", fmt.Sprintf("%s (default %g)", f.Help, f.Default))
	}
	flag.Parse()

	common.SetupLogger("warn", common.LogFormatConsole)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	c := client.New(*server, *timeout)

	if *health {
		h, err := c.Health(ctx)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Status: %s (model loaded: %t, scaler loaded: %t)\n", h.Status, h.ModelLoaded, h.ScalerLoaded)
		return
	}

	// Only flags given on the command line are sent; the service fills in
	// defaults for the rest.
	payload := make(map[string]any)
	flag.Visit(func(fl *flag.Flag) {
		if v, ok := values[fl.Name]; ok {
			payload[fl.Name] = *v
		}
	})

	res, err := c.Predict(ctx, payload)
	if err != nil {
		fail(err)
	}
	fmt.Println(res.Message)
	fmt.Printf("Prediction: %d\n", res.Prediction)
	fmt.Printf("No diabetes: %.1f%%\n", res.Probability.NoDiabetes*100)
	fmt.Printf("Diabetes: %.1f%%\n", res.Probability.Diabetes*100)
}

func fail(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apiErr.Message)
	} else {
		log.Error().Err(err).Msg("request failed")
	}
	os.Exit(1)
}
