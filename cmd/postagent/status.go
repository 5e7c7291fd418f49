package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/easeaico/ai-post-agent/internal/service"
)

func statusCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the agent status report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, cleanup, err := newApp(ctx, *configFile, false)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := a.agent.StatusReport(ctx)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func memoryCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "memory",
		Short: "Print the agent memory document as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp(cmd.Context(), *configFile, false)
			if err != nil {
				return err
			}
			defer cleanup()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.agent.Memory())
		},
	}
}

func printReport(w io.Writer, r service.StatusReport) {
	fmt.Fprintln(w, "Agent Status")
	fmt.Fprintln(w, strings.Repeat("=", 40))

	fmt.Fprintln(w, "\nMemory:")
	fmt.Fprintf(w, "  Generations:        %d\n", r.Memory.TotalGenerations)
	fmt.Fprintf(w, "  Articles processed: %d\n", r.Memory.ArticlesProcessed)
	fmt.Fprintf(w, "  Topics covered:     %d\n", r.Memory.TopicsCovered)
	fmt.Fprintf(w, "  Topic diversity:    %.2f\n", r.Memory.TopicDiversity)
	if r.Memory.LastGeneration != nil {
		fmt.Fprintf(w, "  Last generation:    %s\n", r.Memory.LastGeneration.Format("2006-01-02 15:04"))
	} else {
		fmt.Fprintln(w, "  Last generation:    never")
	}

	fmt.Fprintln(w, "\nDecision:")
	verdict := "wait"
	if r.Decision.Run {
		verdict = "generate now"
	}
	fmt.Fprintf(w, "  %s (%s)\n", verdict, r.Decision.Reason.Message)

	fmt.Fprintln(w, "\nPerformance:")
	fmt.Fprintf(w, "  Posts generated: %d\n", r.Performance.TotalPostsGenerated)
	for _, src := range slices.Sorted(maps.Keys(r.Performance.SourcesBalance)) {
		fmt.Fprintf(w, "  %-20s %d\n", src+":", r.Performance.SourcesBalance[src])
	}
	for _, rec := range r.Performance.Recommendations {
		fmt.Fprintf(w, "  * %s\n", rec.Message)
	}

	fmt.Fprintln(w, "\nAdaptive parameters:")
	fmt.Fprintf(w, "  Tone:       %s\n", r.AdaptiveParams.Tone)
	fmt.Fprintf(w, "  Emojis:     %s\n", r.AdaptiveParams.EmojiLevel)
	fmt.Fprintf(w, "  Hashtags:   %s\n", r.AdaptiveParams.HashtagCount)
	fmt.Fprintf(w, "  Paragraphs: %s\n", r.AdaptiveParams.ParagraphCount)
}
