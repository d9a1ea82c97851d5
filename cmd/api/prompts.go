package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appprompts "github.com/bryanwahyu/auspex/internal/application/prompts"
	domprompts "github.com/bryanwahyu/auspex/internal/domain/prompts"
	"github.com/bryanwahyu/auspex/internal/infra/ai/prompt"
)

func newPromptsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage the stored prompt templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the prompts table and seed it when empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPrompts(cmd.Context(), opts, true, func(ctx context.Context, svc *appprompts.Service) error {
				if err := svc.Init(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "prompts table ready")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List prompts (file defaults when no database is configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPrompts(cmd.Context(), opts, false, func(ctx context.Context, svc *appprompts.Service) error {
				list, err := svc.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tNAME\tDEFAULT\tLENGTH")
				for _, p := range list {
					fmt.Fprintf(tw, "%s\t%s\t%t\t%d\n", p.Key, p.Name, p.IsDefault, len(p.Content))
				}
				return tw.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <key>",
		Short: "Restore a prompt to its bundled default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPrompts(cmd.Context(), opts, true, func(ctx context.Context, svc *appprompts.Service) error {
				if err := svc.Reset(ctx, domprompts.Key(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "prompt %s reset to default\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

// withPrompts builds the prompt service. needDB turns a missing database into
// an error instead of falling back to files.
func withPrompts(ctx context.Context, opts *rootOptions, needDB bool, fn func(context.Context, *appprompts.Service) error) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	defer log.Sync()
	if ctx == nil {
		ctx = context.Background()
	}

	repo, closeDB, err := openRepository(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB()
	if repo == nil && needDB {
		return errors.New("no database configured (set DATABASE_URL or database.host)")
	}

	return fn(ctx, appprompts.NewService(repo, prompt.NewTemplates(cfg.Prompts.Dir), log))
}
