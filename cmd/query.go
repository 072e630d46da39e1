package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ChiragAJain/shl-recommender/internal/logger"
	"github.com/ChiragAJain/shl-recommender/internal/recommender"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowAnalysis  = "Show query analysis"
	PromptDumpToFile    = "Dump recommendations to file"
	PromptDumpCatalogue = "Dump catalogue to file"
	PromptExit          = "Exit"
)

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowAnalysis, PromptDumpToFile, PromptDumpCatalogue, PromptExit},
}

var queryCmd = &cobra.Command{
	Use:   "query [job role query]",
	Short: "Recommend assessments for a free-text job role query",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runQuery(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().IntP("results", "n", 10, "number of recommendations to return")
	queryCmd.Flags().BoolP("no-prompt", "y", false, "print recommendations and exit without the action menu")
}

func runQuery(cmd *cobra.Command, rawQuery string) {
	ctx := cmd.Context()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	engine, cat, err := buildEngine(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("building the engine", zap.Error(err))
	}

	nResults, _ := cmd.Flags().GetInt("results")

	rec, err := engine.Recommend(ctx, rawQuery, nResults)
	if err != nil {
		zlog.Fatal("recommendation failed", zap.Error(err))
	}

	printResults(rec)

	if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); noPrompt {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			zlog.Fatal("exiting", zap.Error(err))
		}

		switch action {
		case PromptShowAnalysis:
			pretty, _ := json.MarshalIndent(rec.Analysis, "", "  ")
			fmt.Println(string(pretty))
		case PromptDumpToFile:
			filename, err := dumpToTmpFile(rec)
			if err != nil {
				zlog.Fatal("dumping recommendations", zap.Error(err))
			}
			zlog.Info("dumped recommendations to file", zap.String("filename", filename))
		case PromptDumpCatalogue:
			filename, err := cat.DumpToTmpFile()
			if err != nil {
				zlog.Fatal("dumping catalogue", zap.Error(err))
			}
			zlog.Info("dumped catalogue to file", zap.String("filename", filename))
		case PromptExit:
			return
		}
	}
}

func printResults(rec *recommender.Recommendation) {
	fmt.Printf("Top %d recommendations for: %s\n\n", len(rec.Results), rec.Query)

	for _, res := range rec.Results {
		degraded := ""
		if res.SemanticDegraded {
			degraded = " (semantic unavailable)"
		}
		fmt.Printf("%2d. %s [%s]\n", res.Rank, res.Item.Name, strings.Join(res.Item.TestTypes, ","))
		fmt.Printf("    score %.4f (semantic %.2f / keyword %.2f / metadata %.2f)%s\n",
			res.FinalScore, res.Scores.Semantic, res.Scores.Keyword, res.Scores.Metadata, degraded)
		if res.Item.URL != "" {
			fmt.Printf("    %s\n", res.Item.URL)
		}
	}
}

func dumpToTmpFile(rec *recommender.Recommendation) (string, error) {
	file, err := os.CreateTemp("", "recommendations_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return "", err
	}
	return file.Name(), nil
}
