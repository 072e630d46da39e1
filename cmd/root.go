package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "shl-recommender"
)

type Config struct {
	Catalogue  *CatalogueConfig  `mapstructure:"catalogue"`
	Ranking    *RankingConfig    `mapstructure:"ranking"`
	AI         *AIConfig         `mapstructure:"ai"`
	Embeddings *EmbeddingsConfig `mapstructure:"embeddings"`
	Server     *ServerConfig     `mapstructure:"server"`
}

type CatalogueConfig struct {
	File      string `mapstructure:"file"`
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
	UserAgent string `mapstructure:"user-agent"`
}

type RankingConfig struct {
	Weights               *WeightsConfig `mapstructure:"weights"`
	ExpandSynonyms        bool           `mapstructure:"expand-synonyms"`
	BalanceTestTypes      bool           `mapstructure:"balance-test-types"`
	DurationOverageFactor float64        `mapstructure:"duration-overage-factor"`
	Concurrency           int            `mapstructure:"concurrency"`
}

type WeightsConfig struct {
	Semantic float64 `mapstructure:"semantic"`
	Keyword  float64 `mapstructure:"keyword"`
	Metadata float64 `mapstructure:"metadata"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type EmbeddingsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BaseURL    string `mapstructure:"base-url"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "shl-recommender recommends SHL assessments for a free-text job role query",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	if err := viper.BindEnv("embeddings.api-key-file", "EMBEDDINGS_API_KEY_FILE"); err != nil {
		log.Fatalf("binding EMBEDDINGS_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is shl-recommender.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// A missing config file is fine: the engine runs fully degraded on the
	// built-in defaults. A malformed one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}
