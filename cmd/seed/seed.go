// Seeds a development database with a workable routing configuration:
// capability tags, a fallback chain, cost strategies, model pricing,
// provider keys and one demo bot.
package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/kestrelhq/botgate/internal/store/sqlite"
)

func main() {
	db, err := sqlite.Open("file:botgate.db?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	tags := []struct {
		id, name, category string
		priority           int
		protocol           string
		skills, models     string
		thinking, cache    bool
		vision             bool
	}{
		{"deep-reasoning", "Deep Reasoning", "reasoning", 100, "anthropic-native", "", `["claude-opus-4-1","claude-sonnet-4-5"]`, true, false, false},
		{"cost-optimized", "Cost Optimized", "cost", 80, "anthropic-native", "", "", false, true, false},
		{"web-search", "Web Search", "tools", 60, "", `["web-search"]`, "", false, false, false},
		{"code-execution", "Code Execution", "tools", 60, "", `["code-runner"]`, "", false, false, false},
		{"vision", "Vision", "multimodal", 50, "", "", `["gpt-4o","gemini-1.5-pro"]`, false, false, true},
	}
	for _, t := range tags {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO capability_tags
			(tag_id, name, category, priority, required_protocol, required_skills_json, required_models_json,
			 requires_extended_thinking, requires_cache_control, requires_vision)
			VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?)`,
			t.id, t.name, t.category, t.priority, t.protocol, t.skills, t.models, t.thinking, t.cache, t.vision)
		if err != nil {
			log.Fatalf("seed tag %s: %v", t.id, err)
		}
	}
	fmt.Println("Seeded capability tags")

	openaiKey := uuid.New().String()
	anthropicKey := uuid.New().String()
	googleKey := uuid.New().String()
	keys := []struct{ id, vendor, baseURL string }{
		{openaiKey, "openai", "https://api.openai.com/v1"},
		{anthropicKey, "anthropic", "https://api.anthropic.com"},
		{googleKey, "google", "https://generativelanguage.googleapis.com"},
	}
	for _, k := range keys {
		if _, err := db.Exec(`INSERT OR IGNORE INTO provider_keys (id, vendor, base_url) VALUES (?, ?, ?)`,
			k.id, k.vendor, k.baseURL); err != nil {
			log.Fatalf("seed provider key: %v", err)
		}
	}
	fmt.Println("Seeded provider keys")

	models := []struct {
		model, vendor    string
		in, out, cached  float64
		reasoning, speed int
	}{
		{"claude-opus-4-1", "anthropic", 15, 75, 1.5, 96, 40},
		{"claude-sonnet-4-5", "anthropic", 3, 15, 0.3, 88, 65},
		{"claude-haiku-4", "anthropic", 0.8, 4, 0.08, 70, 90},
		{"gpt-4o", "openai", 2.5, 10, 1.25, 85, 70},
		{"gpt-4o-mini", "openai", 0.15, 0.6, 0.075, 65, 92},
		{"gemini-1.5-pro", "google", 1.25, 5, 0.31, 85, 60},
	}
	for _, m := range models {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO model_catalog
			(model, vendor, input_per_million, output_per_million, cached_per_million, reasoning_score, speed_score)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.model, m.vendor, m.in, m.out, m.cached, m.reasoning, m.speed)
		if err != nil {
			log.Fatalf("seed model %s: %v", m.model, err)
		}
	}
	fmt.Println("Seeded model catalog")

	primaryJSON := fmt.Sprintf(`{"provider_key_id":%q,"model":"gpt-4o","protocol":"openai-compatible"}`, openaiKey)
	chainJSON := fmt.Sprintf(`[{"provider_key_id":%q,"model":"claude-sonnet-4-5","protocol":"anthropic-native"},{"provider_key_id":%q,"model":"gemini-1.5-pro","protocol":"openai-compatible"}]`, anthropicKey, googleKey)
	if _, err := db.Exec(`
		INSERT OR IGNORE INTO fallback_chains (chain_id, name, primary_json, chain_json, max_retries, retry_delay_ms)
		VALUES ('default-chain', 'Default Chain', ?, ?, 2, 500)`, primaryJSON, chainJSON); err != nil {
		log.Fatalf("seed fallback chain: %v", err)
	}
	fmt.Println("Seeded fallback chain")

	strategies := []struct {
		id, name               string
		cost, perf, capability float64
		budget                 float64
	}{
		{"balanced", "Balanced", 1, 1, 1, 0},
		{"cheapest", "Cheapest", 3, 0.5, 0.5, 50},
		{"best-quality", "Best Quality", 0.5, 1, 3, 0},
	}
	for _, s := range strategies {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO cost_strategies (strategy_id, name, cost_weight, performance_weight, capability_weight, budget_per_day)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.id, s.name, s.cost, s.perf, s.capability, s.budget)
		if err != nil {
			log.Fatalf("seed strategy %s: %v", s.id, err)
		}
	}
	fmt.Println("Seeded cost strategies")

	complexityJSON := `{
		"enabled": true,
		"levels": {
			"super_easy": {"vendor": "openai", "model": "gpt-4o-mini"},
			"easy": {"vendor": "openai", "model": "gpt-4o-mini"},
			"medium": {"vendor": "openai", "model": "gpt-4o"},
			"hard": {"vendor": "anthropic", "model": "claude-sonnet-4-5"},
			"super_hard": {"vendor": "anthropic", "model": "claude-opus-4-1"}
		},
		"tool_min_complexity": "medium",
		"classifier": {"model": "gpt-4o-mini", "vendor": "openai", "base_url": "http://localhost:9090"}
	}`
	if _, err := db.Exec(`INSERT OR IGNORE INTO complexity_configs (config_id, config_json) VALUES ('default', ?)`,
		complexityJSON); err != nil {
		log.Fatalf("seed complexity config: %v", err)
	}
	fmt.Println("Seeded default complexity config")

	botID := uuid.New().String()
	routingConfigJSON := `{"routing_enabled": true, "routing_mode": "complexity", "fallback_chain_id": "default-chain", "cost_strategy_id": "balanced"}`
	if _, err := db.Exec(`
		INSERT OR IGNORE INTO bots (bot_id, name, skills_json, primary_model, primary_vendor, primary_provider_key_id, routing_config_json)
		VALUES (?, 'Demo Bot', '["web-search"]', 'gpt-4o', 'openai', ?, ?)`,
		botID, openaiKey, routingConfigJSON); err != nil {
		log.Fatalf("seed bot: %v", err)
	}
	fmt.Printf("Seeded demo bot: %s\n", botID)

	failoverJSON := fmt.Sprintf(`{"primary": {"provider_key_id": %q, "model": "gpt-4o"}, "chain": [{"provider_key_id": %q, "model": "claude-sonnet-4-5"}], "max_attempts": 2, "retry_delay_ms": 500}`, openaiKey, anthropicKey)
	if _, err := db.Exec(`
		INSERT OR IGNORE INTO routing_rules (rule_id, bot_id, rule_type, config_json)
		VALUES (?, ?, 'FAILOVER', ?)`,
		uuid.New().String(), botID, failoverJSON); err != nil {
		log.Fatalf("seed routing rule: %v", err)
	}
	fmt.Println("Seeded failover rule")
}
