package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/easeaico/ai-post-agent/internal/decision"
	"github.com/easeaico/ai-post-agent/internal/service"
)

func runCmd(configFile *string) *cobra.Command {
	var (
		yes    bool
		force  bool
		manual bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one generation cycle",
		Long: `Run one generation cycle.

The agent first decides whether generating now is worthwhile, then picks the
best scraped articles and writes a post for each of them.

Examples:
  postagent run
  postagent run --yes --force
  postagent run --manual`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, cleanup, err := newApp(ctx, *configFile, true)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			opts := service.RunOptions{Force: force, Manual: manual}
			if !manual {
				report, err := a.agent.StatusReport(ctx)
				if err != nil {
					return err
				}
				printReport(out, report)
			}
			if !yes {
				opts.Confirm = confirmer(cmd.InOrStdin(), out)
			}

			res, err := a.pipeline.Run(ctx, opts)
			if errors.Is(err, service.ErrNoArticles) || errors.Is(err, service.ErrNoPosts) {
				fmt.Fprintf(out, "\nNothing generated: %v\n", err)
				return nil
			}
			if err != nil {
				return err
			}

			if res.Skipped {
				if !res.Decision.Run {
					fmt.Fprintf(out, "\nAgent decided not to generate: %s\n", res.Decision.Reason.Message)
					fmt.Fprintln(out, "Use --force to generate anyway.")
				} else {
					fmt.Fprintln(out, "\nGeneration cancelled.")
				}
				return nil
			}

			fmt.Fprintf(out, "\nSelected %d of %d articles:\n", len(res.Selected), res.Candidates)
			for i, art := range res.Selected {
				fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, art.Title, art.Source)
			}
			fmt.Fprintf(out, "\nGenerated %d posts:\n", len(res.Posts))
			for _, p := range res.Posts {
				fmt.Fprintf(out, "\n[%s] %s\n%s\n%s\n", p.ID, p.Article.Title, strings.Repeat("-", 40), p.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "generate even when the agent decides to wait")
	cmd.Flags().BoolVar(&manual, "manual", false, "use every scraped article with default parameters and skip learning")

	return cmd
}

// confirmer asks on out and reads the answer from in.
func confirmer(in io.Reader, out io.Writer) func(decision.Decision) bool {
	reader := bufio.NewReader(in)
	return func(d decision.Decision) bool {
		if d.Run {
			fmt.Fprint(out, "\nProceed with generation? [y/N]: ")
		} else {
			fmt.Fprintf(out, "\nAgent suggests waiting (%s). Generate anyway? [y/N]: ", d.Reason.Message)
		}
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}
