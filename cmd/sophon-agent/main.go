package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sophon-ai/sophon-agent/pkg/agent"
	"github.com/sophon-ai/sophon-agent/pkg/clients"
	"github.com/sophon-ai/sophon-agent/pkg/config"
	"github.com/sophon-ai/sophon-agent/pkg/search"
	"github.com/spf13/cobra"
)

var (
	topic        string
	initialCount int
	maxLoops     int
	engines      []string
	maxResults   int
)

// printSink writes streamed answer text to stdout as it arrives and keeps
// quiet about tool events, which go to the structured log instead.
type printSink struct{}

func (printSink) Send(ev agent.Event) {
	if ev.Type == agent.EventMessageChunk {
		fmt.Print(ev.Content)
	}
}

func main() {
	// Setup structured logging
	handler := slog.NewTextHandler(os.Stderr, nil)
	slog.SetDefault(slog.New(handler))

	// Load .env file
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, as long as env vars are set
	}

	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "sophon-agent",
		Short: "A terminal-based research agent",
		Long:  `sophon-agent researches a topic by generating search queries, reading web results, and iterating until it can write a cited answer.`,
		Run: func(cmd *cobra.Command, args []string) {

			if !cmd.Flags().Changed("topic") {
				// Interactive Mode
				reader := bufio.NewReader(os.Stdin)

				fmt.Print("Enter research topic: ")
				input, _ := reader.ReadString('\n')
				topic = strings.TrimSpace(input)
			}
			if topic == "" {
				slog.Error("Topic cannot be empty")
				os.Exit(1)
			}

			slog.Info("Starting research", "topic", topic)

			loader := config.NewModelLoader(cfg.ModelConfigPath)
			registry := clients.NewRegistry(loader)
			resolver := func(name string) (agent.Generator, error) {
				return registry.Get(name)
			}

			aggregator := search.NewAggregator(
				search.NewTavily(cfg.TavilyAPIKey),
				search.NewDuckDuckGo(),
				search.NewArxiv(),
			)

			a := agent.New(cfg, aggregator, resolver)

			st := &agent.State{
				ThreadID:          "cli",
				Messages:          []agent.Message{{Role: agent.RoleUser, Content: topic}},
				InitialQueryCount: initialCount,
				MaxResearchLoops:  maxLoops,
				SearchEngines:     engines,
				MaxSearchResults:  maxResults,
			}

			if err := a.Run(context.Background(), st, printSink{}); err != nil {
				slog.Error("Error running research", "error", err)
				os.Exit(1)
			}

			fmt.Println()
			if len(st.SourcesGathered) > 0 {
				fmt.Println("\nSources:")
				for _, s := range st.SourcesGathered {
					fmt.Printf("  - %s (%s)\n", s.Title, s.URL)
				}
			}
		},
	}

	rootCmd.Flags().StringVarP(&topic, "topic", "t", "", "The research topic")
	rootCmd.Flags().IntVar(&initialCount, "queries", 0, "Number of initial search queries (0 uses the configured default)")
	rootCmd.Flags().IntVar(&maxLoops, "loops", 0, "Maximum research loops (0 uses the configured default)")
	rootCmd.Flags().StringSliceVar(&engines, "engines", nil, "Search engines to query (default from configuration)")
	rootCmd.Flags().IntVar(&maxResults, "results", 0, "Maximum results per engine per query (0 uses the configured default)")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
