// Command autoai-smoke runs a deployment check against a prediction API:
// health, model listing, then a sample healthcare prediction.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"autoai-dashboard/internal/predictapi"
)

func main() {
	baseURL := flag.String("base-url", envOr("API_BASE_URL", "http://localhost:8000"), "prediction API base URL")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request timeout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client, err := predictapi.NewClient(*baseURL, *timeout, logger, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "client error:", err)
		os.Exit(2)
	}

	if err := run(context.Background(), client, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// run prints a report to w. Only a failed prediction is fatal; the health
// and model steps report and carry on.
func run(ctx context.Context, client *predictapi.Client, w io.Writer) error {
	fmt.Fprintln(w, "Testing prediction API at", client.BaseURL)

	health, err := client.CheckHealth(ctx)
	if err != nil {
		fmt.Fprintf(w, "Health check failed: %v\n", err)
	} else {
		fmt.Fprintf(w, "Health check: %v\n", health)
	}

	models := client.ListModels(ctx)
	fmt.Fprintf(w, "Available models: %d\n", len(models))
	for _, m := range models[:min(3, len(models))] {
		fmt.Fprintf(w, "   - %s (%s)\n", m.Name, m.Domain)
	}

	res, err := client.Predict(ctx, sampleRequest())
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}
	fmt.Fprintln(w, "Prediction successful!")
	fmt.Fprintf(w, "   Model used: %s\n", res.ModelUsed)
	fmt.Fprintf(w, "   Predictions: %v\n", res.Predictions)
	fmt.Fprintf(w, "   Confidence: %v\n", res.Confidence)
	fmt.Fprintf(w, "   Processing time: %dms\n", res.ProcessingTimeMs)
	return nil
}

// sampleRequest holds two healthcare patients; the server picks the model.
func sampleRequest() predictapi.PredictionRequest {
	return predictapi.PredictionRequest{
		Data: []predictapi.FeatureRecord{
			patient(45, 120, 200, 25, 100, 72, 1, 3, 0, 2, 4, 7),
			patient(65, 140, 240, 32, 130, 85, 1, 1, 20, 4, 8, 5),
		},
		Domain:           "healthcare",
		ReturnConfidence: true,
	}
}

var patientFields = []string{
	"age", "blood_pressure", "cholesterol", "bmi", "glucose", "heart_rate",
	"family_history", "exercise_freq", "smoking_years", "alcohol_consumption",
	"stress_level", "sleep_quality",
}

func patient(values ...float64) predictapi.FeatureRecord {
	rec := make(predictapi.FeatureRecord, len(patientFields))
	for i, name := range patientFields {
		rec[i] = predictapi.Feature{Name: name, Value: values[i]}
	}
	return rec
}
