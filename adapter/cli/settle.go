package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	settlementApp "github.com/mirelabalan/fanvault/internal/settlement/application"
	settlementDomain "github.com/mirelabalan/fanvault/internal/settlement/domain"
)

var settleAmount int64

// settleCmd replays a payment confirmation by hand, for confirmations the
// chat platform delivered but the storefront lost. Settlement is
// idempotent, so replaying an already-settled payment is safe.
var settleCmd = &cobra.Command{
	Use:   "settle <payment-id> <user-id> <payload>",
	Short: "Settle a payment confirmation manually",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}
		userID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[1])
		}

		result, err := c.Settlement.Settle(cmd.Context(), settlementApp.PaymentRecord{
			PaymentID: args[0],
			UserID:    userID,
			Amount:    settleAmount,
			Payload:   args[2],
		})
		if err != nil {
			return err
		}

		if result.Duplicate {
			fmt.Printf("Payment %s was already settled, nothing changed.\n", args[0])
			return nil
		}

		switch result.Kind {
		case settlementDomain.PaymentSubscription:
			fmt.Printf("Subscription for user %d extended through %s.\n",
				userID, result.Subscription.ExpiresAt().Format("2006-01-02"))
		case settlementDomain.PaymentContent:
			fmt.Printf("Purchase of %s recorded for user %d", result.Item.Name(), userID)
			if result.Delivered {
				fmt.Print(", content delivered")
			}
			fmt.Println(".")
		}
		return nil
	},
}

func init() {
	settleCmd.Flags().Int64Var(&settleAmount, "amount", 0, "paid amount in credits, for the audit log")
	rootCmd.AddCommand(settleCmd)
}
