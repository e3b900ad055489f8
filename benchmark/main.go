// Package main provides a performance benchmarking tool for the Cadence CLI.
// It generates synthetic trend exports of increasing size and measures detection
// times with and without run history, treating the first successful run with
// history as cold and averaging the rest as warm, generating CSV output for
// performance analysis and documentation.
//
// Prerequisites:
// - cadence binary installed and available in PATH
//
// Usage: go run benchmark/main.go [data-dir]
//
//	data-dir: Directory where the synthetic datasets are written
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-history average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset       string
	Series        int
	NoHistoryTime string
	ColdTime      string
	WarmTime      string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DataDir       string
	Timeout       time.Duration
	Workers       int
	Days          int
	NoHistoryRuns int
	HistoryRuns   int
	Datasets      map[string]int // dataset name to number of entities
	DatasetOrder  []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [data-dir]\n", os.Args[0])
		os.Exit(1)
	}
	dataDir := os.Args[1]

	config := BenchmarkConfig{
		DataDir:       dataDir,
		Timeout:       5 * time.Minute,
		Workers:       14,
		Days:          180,
		NoHistoryRuns: 3,
		HistoryRuns:   4,
		Datasets: map[string]int{
			"small":  100,
			"medium": 1_000,
			"large":  10_000,
			"huge":   50_000,
		},
		DatasetOrder: []string{"small", "medium", "large", "huge"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the run history using cadence runs clear
	fmt.Printf("Clearing run history...\n")
	clearCmd := exec.Command("cadence", "runs", "clear", "--run-backend", "sqlite")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear run history: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Run history cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the cadence binary exists and the data directory is usable
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("cadence"); err != nil {
		return fmt.Errorf("cadence binary not found in PATH")
	}
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("cannot create data directory %s: %w", config.DataDir, err)
	}
	return nil
}

// runBenchmarks generates every dataset and executes the benchmark suite on it
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, no-history: %d runs, history: %d runs\n",
		len(config.Datasets), config.Timeout, config.Workers, config.NoHistoryRuns, config.HistoryRuns)

	for _, name := range config.DatasetOrder {
		entities := config.Datasets[name]
		path := filepath.Join(config.DataDir, fmt.Sprintf("trends_%s.csv", name))

		fmt.Printf("Generating %s dataset (%d series x %d days)\n", name, entities, config.Days)
		if err := generateDataset(path, entities, config.Days); err != nil {
			fmt.Printf("Warning: failed to generate %s: %v\n", name, err)
			continue
		}

		results = append(results, runBenchmarkSuite(config, name, entities, path))
	}

	return results
}

// generateDataset writes a trends CSV where a third of the series are weekly,
// a third are monthly and the rest are noise.
func generateDataset(path string, entities, days int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"itemid", "clock", "value_max"}); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(42, uint64(entities)))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for e := range entities {
		entity := fmt.Sprintf("srv-%05d", e)
		for day := range days {
			var value float64
			switch e % 3 {
			case 0:
				value = 50 + 30*math.Sin(2*math.Pi*float64(day)/7)
			case 1:
				value = 50 + 30*math.Sin(2*math.Pi*float64(day)/30)
			}
			value += rng.NormFloat64() * 5
			record := []string{
				entity,
				strconv.FormatInt(start.AddDate(0, 0, day).Unix(), 10),
				strconv.FormatFloat(value, 'f', 3, 64),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// runBenchmarkSuite runs both no-history and history benchmarks for a dataset
func runBenchmarkSuite(config BenchmarkConfig, name string, entities int, path string) BenchmarkResult {
	fmt.Printf("Running detection on %s\n", name)

	// Helper to run a benchmark phase
	runPhase := func(runBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, runBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: Runs without history
	_, noHistoryAvg := runPhase("none", config.NoHistoryRuns, "No-history")

	// Phase 2: Runs recorded in SQLite
	coldTime, warmAvg := runPhase("sqlite", config.HistoryRuns, "History")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-history average: %s, Cold time: %s, Warm average: %s\n", noHistoryAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:       name,
		Series:        entities,
		NoHistoryTime: noHistoryAvg,
		ColdTime:      coldTimeStr,
		WarmTime:      warmAvg,
	}
}

// runBenchmark executes cadence detect multiple times with the specified run backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, path, runBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"detect", path,
		"--output", "json",
		"--workers", strconv.Itoa(config.Workers),
		"--run-backend", runBackend,
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("cadence", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.Output()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if the JSON document on stdout is complete
func isSuccess(output []byte) bool {
	for i := len(output) - 1; i >= 0; i-- {
		switch output[i] {
		case ' ', '\n', '\r', '\t':
			continue
		case '}':
			return true
		default:
			return false
		}
	}
	return false
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/cadence_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "series", "no_history_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		record := []string{result.Dataset, strconv.Itoa(result.Series), result.NoHistoryTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	fmt.Printf("Detection:\n")
	for _, result := range results {
		fmt.Printf("  %-8s (%6d series): No-history: %s, Cold: %s, Warm: %s\n",
			result.Dataset, result.Series, result.NoHistoryTime, result.ColdTime, result.WarmTime)
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
