package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/ChiragAJain/shl-recommender/internal/eval"
	"github.com/ChiragAJain/shl-recommender/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure Recall@K on a labeled query set and write batch predictions",
	Run: func(cmd *cobra.Command, _ []string) {
		runEvaluate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().String("labels", "", "long-format CSV of labeled queries (Query,Assessment_url)")
	evaluateCmd.Flags().IntSlice("k", []int{1, 3, 5, 10}, "recall cutoffs")
	evaluateCmd.Flags().String("queries", "", "file with one query per line to predict for")
	evaluateCmd.Flags().String("predictions", "predictions.csv", "output CSV for batch predictions")
	evaluateCmd.Flags().IntP("results", "n", 10, "number of recommendations per query")
}

func runEvaluate(cmd *cobra.Command) {
	ctx := cmd.Context()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	labelsFile, _ := cmd.Flags().GetString("labels")
	queriesFile, _ := cmd.Flags().GetString("queries")
	if labelsFile == "" && queriesFile == "" {
		zlog.Fatal("nothing to do: pass --labels and/or --queries")
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	engine, _, err := buildEngine(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("building the engine", zap.Error(err))
	}

	evaluator := eval.NewEvaluator(engine, zlog)
	nResults, _ := cmd.Flags().GetInt("results")

	if labelsFile != "" {
		set, err := eval.LoadLabeledSet(labelsFile)
		if err != nil {
			zlog.Fatal("loading labeled set", zap.Error(err))
		}

		ks, _ := cmd.Flags().GetIntSlice("k")
		report, err := evaluator.Evaluate(ctx, set, ks)
		if err != nil {
			zlog.Fatal("evaluation failed", zap.Error(err))
		}

		printReport(report)
	}

	if queriesFile != "" {
		queries, err := readQueryLines(queriesFile)
		if err != nil {
			zlog.Fatal("reading queries", zap.Error(err))
		}

		outFile, _ := cmd.Flags().GetString("predictions")
		out, err := os.Create(outFile)
		if err != nil {
			zlog.Fatal("creating predictions file", zap.Error(err))
		}
		defer out.Close()

		rows, err := evaluator.WritePredictions(ctx, out, queries, nResults)
		if err != nil {
			zlog.Fatal("writing predictions", zap.Error(err))
		}

		zlog.Info("predictions written",
			zap.String("filename", outFile),
			zap.Int("queries", len(queries)),
			zap.Int("rows", rows),
		)
	}
}

func printReport(report *eval.Report) {
	fmt.Printf("Evaluated %d labeled queries\n", report.Queries)

	ks := make([]int, 0, len(report.MeanRecall))
	for k := range report.MeanRecall {
		ks = append(ks, k)
	}
	sort.Ints(ks)

	for _, k := range ks {
		fmt.Printf("  Mean Recall@%-3d %.4f\n", k, report.MeanRecall[k])
	}
}

func readQueryLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var queries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		queries = append(queries, scanner.Text())
	}
	return queries, scanner.Err()
}
