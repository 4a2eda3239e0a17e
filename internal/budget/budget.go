package budget

import (
	"math"
	"strings"
)

// charsPerToken is the rough English ratio used for all estimates.
const charsPerToken = 4

// EstimateTokens returns a conservative token estimate for s. The result is
// at least 1 for any non-empty string.
func EstimateTokens(s string) int {
	n := len(s)
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(float64(n) / charsPerToken))
}

// ModelContextTokens returns an estimated context window for a model name.
// Unknown models get a small default.
func ModelContextTokens(model string) int {
	name := strings.ToLower(strings.TrimSpace(model))
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	switch {
	case strings.HasSuffix(name, "1m"):
		return 1_000_000
	case strings.HasSuffix(name, "200k"):
		return 200_000
	case strings.HasSuffix(name, "128k"), strings.Contains(name, "-mini"):
		return 128_000
	case strings.HasSuffix(name, "32k"):
		return 32_768
	}
	return 8192
}

// Headroom is the safety margin kept free of the context window: 5% of the
// window, never less than 512 tokens.
func Headroom(model string) int {
	dyn := int(math.Ceil(float64(ModelContextTokens(model)) * 0.05))
	if dyn < 512 {
		return 512
	}
	return dyn
}

// InputChars returns how many characters of page text fit alongside prompt
// while reserving reservedOutput tokens for the reply. Never negative.
func InputChars(model string, reservedOutput int, prompt string) int {
	if reservedOutput < 0 {
		reservedOutput = 0
	}
	left := ModelContextTokens(model) - Headroom(model) - reservedOutput - EstimateTokens(prompt)
	if left <= 0 {
		return 0
	}
	return left * charsPerToken
}

var knownModelMax = map[string]int{
	"gpt-4o":             128_000,
	"gpt-4o-mini":        128_000,
	"gpt-4-turbo":        128_000,
	"gpt-3.5-turbo":      16_384,
	"llama-3":            8_192,
	"llama-3.1":          128_000,
	"openai/gpt-oss-20b": 4_096,
	"gpt-oss-20b":        4_096,
}
