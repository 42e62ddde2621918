// Command ragengine is the operational CLI for the CrossX knowledge-base
// retrieval engine: ingest a corpus, query it, ask grounded questions, keep
// the index fresh, and score retrieval quality.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crossx-ai/ragengine/pkg/config"
	"github.com/crossx-ai/ragengine/pkg/rag"
	"github.com/crossx-ai/ragengine/pkg/rag/eval"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ragengine",
		Short:         "Hybrid retrieval engine for the CrossX knowledge base",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(ingestCmd(), retrieveCmd(), askCmd(), watchCmd(), evalCmd())
	return root
}

// newService opens the configured store and wires the external providers.
func newService(cfg config.Config) (*rag.Service, error) {
	store, err := rag.OpenFileStore(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	embedder := rag.NewEmbedder(cfg.EmbeddingProvider, cfg.EmbeddingModel,
		cfg.EmbeddingAPIBase, cfg.EmbeddingAPIKey, cfg.EmbedTimeout)
	generator := rag.NewGenerator(cfg.GenerationModel, cfg.GenerationAPIBase,
		cfg.GenerationAPIKey, cfg.GenerateTimeout)
	return rag.NewService(store,
		rag.WithEmbedder(embedder),
		rag.WithGenerator(generator),
		rag.WithEmbedTimeout(cfg.EmbedTimeout),
		rag.WithGenerateTimeout(cfg.GenerateTimeout),
	), nil
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [dir]",
		Short: "Ingest a directory of markdown documents into the store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dir := cfg.DocsDir
			if len(args) == 1 {
				dir = args[0]
			}
			svc, err := newService(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			report, err := svc.IngestDir(cmd.Context(), dir)
			if err != nil {
				return err
			}
			for _, f := range report.Files {
				if f.Err != "" {
					fmt.Printf("  skip %s: %s\n", f.Path, f.Err)
					continue
				}
				fmt.Printf("  %s (%s): %d chunks\n", f.Path, f.DocID, f.Chunks)
			}
			fmt.Printf("run %s: %d chunks, %d skipped\n", report.RunID, report.TotalChunks, report.Skipped)
			return nil
		},
	}
}

func retrieveCmd() *cobra.Command {
	var opts rag.QueryOptions
	var weight float64
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "retrieve <query>",
		Short: "Run hybrid retrieval and print the ranked chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, err := newService(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			if cmd.Flags().Changed("bm25-weight") {
				opts.BM25Weight = &weight
			}
			if opts.TopK == 0 {
				opts.TopK = cfg.TopK
			}
			chunks, err := svc.Retrieve(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(chunks)
			}
			for i, c := range chunks {
				fmt.Printf("%d. %s  score=%.4f\n   [%s]\n", i+1, c.ChunkID, c.Score, c.HeadingPath)
			}
			if len(chunks) == 0 {
				fmt.Println("no results")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Audience, "audience", "b2c", "caller audience (b2c|b2b)")
	cmd.Flags().IntVar(&opts.TopK, "top-k", 0, "result count (default from config)")
	cmd.Flags().Float64Var(&weight, "bm25-weight", rag.DefaultBM25Weight, "lexical score weight in [0,1]")
	cmd.Flags().StringVar(&opts.TargetCountry, "target-country", "", "target country filter")
	cmd.Flags().StringVar(&opts.SourceCountry, "source-country", "", "source country filter")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category filter")
	cmd.Flags().StringVar(&opts.Language, "language", "", "chunk language filter, prefix match")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}

func askCmd() *cobra.Command {
	var req rag.AskRequest
	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Run the full retrieve-and-generate pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, err := newService(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			req.Query = args[0]
			res, err := svc.RetrieveAndGenerate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(res)
		},
	}
	cmd.Flags().StringVar(&req.Audience, "audience", "b2c", "caller audience (b2c|b2b)")
	cmd.Flags().StringVar(&req.Language, "language", "ZH", "answer language (ZH|EN|JA|KO)")
	cmd.Flags().StringVar(&req.TargetCountry, "target-country", "", "target country filter")
	cmd.Flags().StringVar(&req.Category, "category", "", "category filter")
	cmd.Flags().IntVar(&req.TopK, "top-k", 0, "grounding chunk count")
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a corpus directory and keep the store current",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dir := cfg.DocsDir
			if len(args) == 1 {
				dir = args[0]
			}
			svc, err := newService(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			if _, err := svc.IngestDir(cmd.Context(), dir); err != nil {
				return err
			}
			w, err := rag.NewWatcher(svc, dir)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			w.Start(ctx)
			fmt.Printf("watching %s, ctrl-c to stop\n", dir)
			<-ctx.Done()
			w.Stop()
			return nil
		},
	}
}

func evalCmd() *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "eval <golden.yaml>",
		Short: "Score retrieval quality against a golden dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			gf, err := eval.LoadGolden(args[0])
			if err != nil {
				return err
			}

			// Evaluation runs against a throwaway in-memory corpus so it
			// never disturbs the persisted store.
			embedder := rag.NewEmbedder(cfg.EmbeddingProvider, cfg.EmbeddingModel,
				cfg.EmbeddingAPIBase, cfg.EmbeddingAPIKey, cfg.EmbedTimeout)
			svc := rag.NewService(rag.NewMemoryStore(), rag.WithEmbedder(embedder))
			if gf.CorpusDir != "" {
				if _, err := svc.IngestDir(cmd.Context(), gf.CorpusDir); err != nil {
					return err
				}
			}

			report, err := eval.Run(cmd.Context(), svc, gf, topK)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(report)
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 10, "evaluation cutoff")
	return cmd
}
