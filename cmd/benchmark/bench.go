package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"

	"github.com/kestrelhq/botgate/internal/store/sqlite"
)

const appPort = 8081

func main() {
	duration := flag.Duration("duration", 10*time.Second, "Duration of the test")
	rate := flag.Int("rate", 50, "Requests per second")
	thinking := flag.Bool("thinking", false, "Send extended-thinking requests")
	flag.Parse()

	workDir, err := os.MkdirTemp("", "botgate-bench")
	if err != nil {
		log.Fatalf("Failed to create work dir: %v", err)
	}
	defer os.RemoveAll(workDir)

	dbPath := filepath.Join(workDir, "bench.db")
	seedBenchData(dbPath)

	if err := os.WriteFile(filepath.Join(workDir, "config.yaml"), []byte(benchConfig(dbPath)), 0644); err != nil {
		log.Fatalf("Failed to write config: %v", err)
	}

	fmt.Println("Building application...")
	binPath, _ := filepath.Abs("bin/server")
	buildCmd := exec.Command("go", "build", "-o", binPath, "./cmd/server")
	buildCmd.Stdout = os.Stdout
	buildCmd.Stderr = os.Stderr
	if err := buildCmd.Run(); err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	fmt.Println("Starting application...")
	cmd := exec.Command(binPath)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "LOG_LEVEL=error")

	logFile, _ := os.Create("bench_server.log")
	defer logFile.Close()
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}
	defer func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	}()

	waitForApp(fmt.Sprintf("http://localhost:%d/health", appPort))

	mode := "Plain"
	if *thinking {
		mode = "Extended-thinking"
	}
	fmt.Printf("Running %s routing benchmark: %s duration, %d req/s\n", mode, *duration, *rate)

	body := map[string]interface{}{
		"bot_id": "bench-bot",
		"request": map[string]interface{}{
			"model":    "gpt-4o",
			"messages": []map[string]string{{"role": "user", "content": "Hello"}},
		},
	}
	if *thinking {
		body["request"].(map[string]interface{})["thinking"] = map[string]interface{}{
			"type":          "enabled",
			"budget_tokens": 4096,
		}
	}
	payload, _ := json.Marshal(body)

	targeter := func(t *vegeta.Target) error {
		t.Method = "POST"
		t.URL = fmt.Sprintf("http://localhost:%d/v1/route", appPort)
		t.Body = payload
		t.Header = http.Header{
			"Content-Type":      []string{"application/json"},
			"Authorization":     []string{"Bearer bench-key-12345"},
			"X-Benchmark-Start": []string{strconv.FormatInt(time.Now().UnixNano(), 10)},
		}
		return nil
	}

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true))
	var metrics vegeta.Metrics

	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, *duration, "Benchmark") {
		metrics.Add(res)
	}
	metrics.Close()

	fmt.Println("--------------------------------------------------")
	fmt.Println("99th percentile: ", metrics.Latencies.P99)
	fmt.Println("Mean:            ", metrics.Latencies.Mean)
	fmt.Println("Max:             ", metrics.Latencies.Max)
	fmt.Printf("Success:         %.2f%%\n", metrics.Success*100)
	fmt.Printf("Throughput:      %.2f req/s\n", metrics.Throughput)
	fmt.Println("--------------------------------------------------")

	if len(metrics.Errors) > 0 {
		fmt.Println("Error Set (first 5 unique):")

		uniqueErrors := make(map[string]bool)
		count := 0
		for _, msg := range metrics.Errors {
			if !uniqueErrors[msg] && count < 5 {
				fmt.Println(msg)

				uniqueErrors[msg] = true
				count++
			}
		}
	}
}

// seedBenchData gives the server one bot and enough catalog to route against.
func seedBenchData(dbPath string) {
	db, err := sqlite.Open("file:" + dbPath + "?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open bench db: %v", err)
	}
	defer db.Close()

	mustExec := func(query string, args ...interface{}) {
		if _, err := db.Exec(query, args...); err != nil {
			log.Fatalf("Failed to seed bench db: %v", err)
		}
	}

	mustExec(`INSERT INTO provider_keys (id, vendor, base_url) VALUES ('bench-key-openai', 'openai', 'http://localhost:9091/v1')`)
	mustExec(`INSERT INTO model_catalog (model, vendor, input_per_million, output_per_million, reasoning_score, speed_score)
		VALUES ('gpt-4o', 'openai', 2.5, 10, 85, 70)`)
	mustExec(`INSERT INTO capability_tags (tag_id, name, category, priority, required_protocol, requires_extended_thinking)
		VALUES ('deep-reasoning', 'Deep Reasoning', 'reasoning', 100, 'anthropic-native', 1)`)
	mustExec(`INSERT INTO bots (bot_id, name, skills_json, primary_model, primary_vendor, primary_provider_key_id, routing_config_json)
		VALUES ('bench-bot', 'Bench Bot', '[]', 'gpt-4o', 'openai', 'bench-key-openai',
		        '{"routing_enabled": true, "routing_mode": "capability"}')`)
}

func waitForApp(url string) {
	for i := 0; i < 20; i++ {
		resp, err := http.Get(url)
		if err == nil && resp.StatusCode == 200 {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Fatal("App timed out")
}

func benchConfig(dbPath string) string {
	return strings.TrimSpace(fmt.Sprintf(`
server:
  port: %d
  env: development
  api_keys: ["bench-key-12345"]
rate_limit:
  requests_per_second: 100000
  burst: 100000
database:
  dsn: "file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000"
redis:
  enabled: false
routing:
  refresh_interval: 5m
`, appPort, dbPath)) + "\n"
}
