package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect the customer base",
}

var usersStatsTop int

var usersStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show customer totals and top spenders",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}

		report, err := c.Stats.Handle(cmd.Context(), usersStatsTop)
		if err != nil {
			return err
		}

		fmt.Printf("Users:        %d\n", report.TotalUsers)
		fmt.Printf("Credits spent: %d\n", report.TotalSpent)
		fmt.Printf("Interactions: %d\n", report.TotalInteractions)

		if len(report.TopSpenders) == 0 {
			return nil
		}
		fmt.Println("\nTop spenders:")
		for i, spender := range report.TopSpenders {
			name := spender.Username
			if name == "" {
				name = fmt.Sprintf("user %d", spender.UserID)
			}
			fmt.Printf("  %d. %-20s %d credits\n", i+1, name, spender.TotalSpent)
		}
		return nil
	},
}

func init() {
	usersStatsCmd.Flags().IntVar(&usersStatsTop, "top", 5, "number of top spenders to list")

	usersCmd.AddCommand(usersStatsCmd)
	rootCmd.AddCommand(usersCmd)
}
