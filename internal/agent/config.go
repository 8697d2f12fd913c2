// Package agent implements the portfolio agent: a chat-completion loop
// that answers portfolio questions by calling the analysis server's
// tools over the streamable HTTP transport.
package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultAgentName  = "SP500 Portfolio Agent"
	defaultServerName = "SP500 MCP"
	defaultServerURL  = "http://localhost:8001/mcp"

	defaultModelEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel         = "gpt-4o-mini"
	defaultTemperature   = 0.2

	apiKeyEnv = "OPENAI_API_KEY"
)

// DefaultQuery runs when no query is given on the command line.
const DefaultQuery = "Which S&P 500 companies have the highest tariff exposure? Show me the top 5."

const defaultInstructions = `You are a Portfolio Retrieval Agent. Use the connected portfolio tools for all questions about this portfolio's companies, sectors, and tariff exposure. Do not make up numbers; always rely on tool outputs.

Available tools (when to use them):

- query_sp500_portfolio: lists of companies with filters. Examples: "tech companies with high exposure", "consumer names importing into the US", "largest retail companies by revenue". Map intent to parameters like sector, industry, exposure_level, imports_filter, min_revenue, sort_by.

- get_company_details: questions about a specific company by name or ticker. Examples: "Tell me about ApexTech", "What's the exposure for APEX0?".

- get_sector_analysis: sector-level questions or comparisons. Examples: "Which sectors are most exposed?", "What's happening in technology vs consumer?".

- get_exposure_summary: portfolio-wide exposure and risk. Examples: "What's the overall tariff exposure?", "Give me a portfolio risk summary."

Response style:
1. Call the most appropriate tool (or two if needed) without asking the user to restate their question.
2. Summarize results in clear English: counts, key metrics (revenue, exposure percentages) and where the risk is concentrated.
3. If you interpret a vague phrase (e.g. "consumer companies"), briefly state your assumption.`

// Config describes the agent: which server it talks to and which model
// drives the conversation.
type Config struct {
	Name         string       `yaml:"name"`
	Server       ServerConfig `yaml:"server"`
	Model        ModelConfig  `yaml:"model"`
	Instructions string       `yaml:"instructions"`
	DefaultQuery string       `yaml:"default_query"`
}

// ServerConfig points at the analysis server's streamable HTTP endpoint.
type ServerConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ModelConfig configures the chat-completion backend. The API key falls
// back to the OPENAI_API_KEY environment variable when unset.
type ModelConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// LoadConfig reads an agent configuration from a YAML file. An empty
// path yields the built-in defaults. File values override defaults
// field by field.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read agent config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse agent config: %w", err)
		}
	}

	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = os.Getenv(apiKeyEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Name: defaultAgentName,
		Server: ServerConfig{
			Name: defaultServerName,
			URL:  defaultServerURL,
		},
		Model: ModelConfig{
			Endpoint:    defaultModelEndpoint,
			Model:       defaultModel,
			Temperature: defaultTemperature,
		},
		Instructions: defaultInstructions,
		DefaultQuery: DefaultQuery,
	}
}

// Validate checks the configuration for required fields.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.Model.Endpoint == "" {
		return fmt.Errorf("model.endpoint is required")
	}
	if c.Model.Model == "" {
		return fmt.Errorf("model.model is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("model.temperature must be between 0 and 2, got %v", c.Model.Temperature)
	}
	return nil
}
