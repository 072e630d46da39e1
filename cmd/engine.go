package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
	"github.com/ChiragAJain/shl-recommender/internal/logger"
	"github.com/ChiragAJain/shl-recommender/internal/query"
	"github.com/ChiragAJain/shl-recommender/internal/query/gemini"
	"github.com/ChiragAJain/shl-recommender/internal/ranking"
	"github.com/ChiragAJain/shl-recommender/internal/recommender"
	"github.com/ChiragAJain/shl-recommender/internal/secrets"
	"github.com/ChiragAJain/shl-recommender/internal/semantic"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// buildEngine assembles the catalogue snapshot, the optional upstream
// collaborators, and the ranking engine from configuration. The interpreter
// and semantic index are best effort: when unconfigured or failing to start,
// the engine runs in the corresponding degraded mode instead of aborting.
func buildEngine(ctx context.Context, config *Config, zlog *zap.Logger) (*recommender.Engine, *catalogue.Catalogue, error) {
	cat, err := loadCatalogue(ctx, config, zlog)
	if err != nil {
		return nil, nil, err
	}

	zlog.Info("catalogue loaded", zap.Int("assessments", cat.Len()))

	interpreter, err := buildInterpreter(ctx, config, zlog)
	if err != nil {
		zlog.Warn("query interpretation disabled", zap.Error(err))
		interpreter = nil
	}

	sem, err := buildSemanticIndex(ctx, config, cat, zlog)
	if err != nil {
		zlog.Warn("semantic scoring disabled", zap.Error(err))
		sem = nil
	}

	weights := ranking.DefaultWeights()
	opts := recommender.Options{}

	if rc := config.Ranking; rc != nil {
		if rc.Weights != nil {
			weights = ranking.Weights{
				Semantic: rc.Weights.Semantic,
				Keyword:  rc.Weights.Keyword,
				Metadata: rc.Weights.Metadata,
			}
		}
		opts.ExpandSynonyms = rc.ExpandSynonyms
		opts.BalanceTestTypes = rc.BalanceTestTypes
		opts.DurationOverageFactor = rc.DurationOverageFactor
		opts.Concurrency = rc.Concurrency
	}

	engine, err := recommender.New(cat, interpreter, sem, weights, opts, zlog)
	if err != nil {
		return nil, nil, fmt.Errorf("building recommendation engine: %w", err)
	}

	return engine, cat, nil
}

func loadCatalogue(ctx context.Context, config *Config, zlog *zap.Logger) (*catalogue.Catalogue, error) {
	cc := config.Catalogue
	if cc == nil || (cc.File == "" && cc.URL == "") {
		return nil, errors.New("catalogue source is required: set catalogue.file or catalogue.url")
	}

	var provider catalogue.Provider
	switch {
	case cc.File != "":
		provider = catalogue.NewFileProvider(cc.File)
	default:
		token := ""
		if cc.TokenFile != "" {
			var err error
			token, err = secrets.Load(secrets.Source{
				Name: "catalogue api token",
				File: cc.TokenFile,
			})
			if err != nil {
				return nil, err
			}
		}

		client := catalogue.NewClient(ctx, zlog, cc.URL, token)
		if cc.UserAgent != "" {
			client.UserAgent = cc.UserAgent
		}
		provider = client
	}

	items, err := provider.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}

	return catalogue.New(items), nil
}

func buildInterpreter(ctx context.Context, config *Config, zlog *zap.Logger) (query.Interpreter, error) {
	cfg := config.AI
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("ai interpretation is not enabled")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai interpretation is enabled")
	}

	keyFile := cfg.Gemini.APIKeyFile
	if keyFile == "" {
		keyFile = viper.GetString("ai.gemini.api-key-file")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: keyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.WithUpstream(zlog, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewAnalyser(generator, genLogger, cfg.Gemini.MaxLogLength), nil
}

func buildSemanticIndex(ctx context.Context, config *Config, cat *catalogue.Catalogue, zlog *zap.Logger) (ranking.SemanticScorer, error) {
	cfg := config.Embeddings
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("embeddings are not enabled")
	}

	keyFile := cfg.APIKeyFile
	if keyFile == "" {
		keyFile = viper.GetString("embeddings.api-key-file")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "embeddings api key",
		File: keyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set embeddings.api-key-file or EMBEDDINGS_API_KEY_FILE)", err)
	}

	embLogger := logger.WithUpstream(zlog, "embeddings", cfg.Model)

	client, err := semantic.NewClient(semantic.ClientConfig{
		BaseURL:    cfg.BaseURL,
		APIKey:     apiKey,
		Model:      cfg.Model,
		MaxRetries: cfg.MaxRetries,
	}, embLogger)
	if err != nil {
		return nil, err
	}

	index := semantic.NewIndex(client, embLogger)
	if err := index.Build(ctx, cat); err != nil {
		return nil, fmt.Errorf("building semantic index: %w", err)
	}

	return index, nil
}
