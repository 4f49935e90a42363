package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Inspect and grant subscriptions",
}

var subscriptionStatusCmd = &cobra.Command{
	Use:   "status <user-id>",
	Short: "Show a customer's subscription status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		status, err := c.Engine.SubscriptionStatus(cmd.Context(), userID)
		if err != nil {
			return err
		}

		if !status.Active {
			if status.Renewals == 0 {
				fmt.Printf("User %d has never subscribed.\n", userID)
			} else {
				fmt.Printf("User %d's subscription lapsed on %s after %d renewals.\n",
					userID, status.ExpiresAt.Format("2006-01-02"), status.Renewals)
			}
			return nil
		}

		fmt.Printf("User %d is subscribed: %d days remaining (expires %s, %d renewals).\n",
			userID, status.DaysRemaining, status.ExpiresAt.Format("2006-01-02"), status.Renewals)
		return nil
	},
}

var subscriptionGrantCmd = &cobra.Command{
	Use:   "grant <user-id>",
	Short: "Grant or extend a subscription period without payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		sub, err := c.Engine.Renew(cmd.Context(), userID)
		if err != nil {
			return err
		}

		fmt.Printf("User %d is subscribed through %s.\n", userID, sub.ExpiresAt().Format("2006-01-02"))
		return nil
	},
}

func init() {
	subscriptionCmd.AddCommand(subscriptionStatusCmd)
	subscriptionCmd.AddCommand(subscriptionGrantCmd)
	rootCmd.AddCommand(subscriptionCmd)
}
