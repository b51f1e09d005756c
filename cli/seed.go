package cli

import (
	"context"
	"fmt"
	"io"

	"ecofinds/seed"
	"ecofinds/store/mongostore"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	accent     = lipgloss.Color("#16A34A")
	dim        = lipgloss.Color("#6B7280")
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 2)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle = lipgloss.NewStyle().Foreground(dim).Width(10)
)

func newSeedCmd(flags *globalFlags) *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, products, carts and orders",
		Long:  "Seed clears the Mongo collections (unless --keep) and inserts the demo marketplace. Every demo user logs in with the same password.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*cfg.RequestTimeout)
			defer cancel()

			backend, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer backend.close(context.Background())

			if backend.db != nil && !keep {
				if err := mongostore.Reset(ctx, backend.db); err != nil {
					return fmt.Errorf("clearing existing data: %w", err)
				}
			}

			summary, err := seed.Run(ctx, backend.store)
			if err != nil {
				return fmt.Errorf("seeding: %w", err)
			}
			renderSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&keep, "keep", false, "Keep existing documents instead of dropping the collections")
	return cmd
}

func renderSummary(out io.Writer, s *seed.Summary) {
	row := func(label string, n int) string {
		return labelStyle.Render(label) + fmt.Sprintf("%d", n)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Database seeded"),
		"",
		row("Users", s.Users),
		row("Products", s.Products),
		row("Carts", s.Carts),
		row("Orders", s.Orders),
		"",
		"Login with john@example.com or demo@example.com",
		"Password: "+seed.DemoPassword,
	)
	fmt.Fprintln(out, boxStyle.Render(body))
}
