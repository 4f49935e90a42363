package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	engagementDomain "github.com/mirelabalan/fanvault/internal/engagement/domain"
)

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "Manage canned chat replies",
}

var responsesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the configured reply for each category",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}

		responses, err := c.Responder.Responses(cmd.Context())
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(responses))
		for key := range responses {
			keys = append(keys, string(key))
		}
		sort.Strings(keys)

		for _, key := range keys {
			fmt.Printf("%-12s %s\n", key, responses[engagementDomain.ResponseKey(key)])
		}
		return nil
	},
}

var responsesSetCmd = &cobra.Command{
	Use:   "set <category> <text>",
	Short: "Set the reply for a category",
	Long: `Set the reply for a category. Categories: greeting, question,
compliment, default.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}

		key := engagementDomain.ResponseKey(args[0])
		if err := c.Responder.SetResponse(cmd.Context(), key, args[1]); err != nil {
			return err
		}

		fmt.Printf("Reply for %s updated.\n", key)
		return nil
	},
}

func init() {
	responsesCmd.AddCommand(responsesListCmd)
	responsesCmd.AddCommand(responsesSetCmd)
	rootCmd.AddCommand(responsesCmd)
}
