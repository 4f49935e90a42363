package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	catalogApp "github.com/mirelabalan/fanvault/internal/catalog/application"
	catalogDomain "github.com/mirelabalan/fanvault/internal/catalog/domain"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage the content catalog",
}

var (
	contentAddPrice       int64
	contentAddAsset       string
	contentAddKind        string
	contentAddDescription string
	contentAddPool        string
)

var contentAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Publish a new catalog item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}

		pool := catalogDomain.Pool(contentAddPool)
		if !pool.Valid() {
			return fmt.Errorf("unknown pool %q, use %q or %q",
				contentAddPool, catalogDomain.PoolIndividual, catalogDomain.PoolSubscription)
		}

		item, err := c.Gate.AddItem(cmd.Context(), catalogApp.AddItemParams{
			Name:        args[0],
			Price:       contentAddPrice,
			AssetRef:    contentAddAsset,
			AssetKind:   catalogDomain.AssetKind(contentAddKind),
			Description: contentAddDescription,
			Pool:        pool,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Published %s (%s", item.Name(), item.Pool())
		if item.IsIndividual() {
			fmt.Printf(", %d credits", item.Price())
		}
		fmt.Println(")")
		return nil
	},
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all catalog items",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}

		items, err := c.Gate.ListCatalog(cmd.Context())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("The catalog is empty.")
			return nil
		}

		fmt.Printf("%-24s %-12s %8s  %s\n", "NAME", "POOL", "PRICE", "DESCRIPTION")
		for _, item := range items {
			price := "-"
			if item.IsIndividual() {
				price = fmt.Sprintf("%d", item.Price())
			}
			fmt.Printf("%-24s %-12s %8s  %s\n", item.Name(), item.Pool(), price, item.Description())
		}
		return nil
	},
}

var (
	contentUpdatePrice       int64
	contentUpdateDescription string
	contentUpdateAsset       string
	contentUpdateKind        string
	contentUpdatePool        string
)

var contentUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Edit an existing catalog item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}

		var params catalogApp.UpdateItemParams
		if cmd.Flags().Changed("price") {
			params.Price = &contentUpdatePrice
		}
		if cmd.Flags().Changed("description") {
			params.Description = &contentUpdateDescription
		}
		if cmd.Flags().Changed("asset") {
			params.AssetRef = &contentUpdateAsset
			params.AssetKind = catalogDomain.AssetKind(contentUpdateKind)
		}
		if cmd.Flags().Changed("pool") {
			pool := catalogDomain.Pool(contentUpdatePool)
			if !pool.Valid() {
				return fmt.Errorf("unknown pool %q, use %q or %q",
					contentUpdatePool, catalogDomain.PoolIndividual, catalogDomain.PoolSubscription)
			}
			params.Pool = &pool
		}

		item, err := c.Gate.UpdateItem(cmd.Context(), args[0], params)
		if err != nil {
			return err
		}

		fmt.Printf("Updated %s\n", item.Name())
		return nil
	},
}

var contentRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an item from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}

		if err := c.Gate.RemoveItem(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Removed %s. Existing buyers keep access through their library.\n", args[0])
		return nil
	},
}

func init() {
	contentAddCmd.Flags().Int64Var(&contentAddPrice, "price", 0, "price in credits (individual pool only)")
	contentAddCmd.Flags().StringVar(&contentAddAsset, "asset", "", "asset reference to deliver")
	contentAddCmd.Flags().StringVar(&contentAddKind, "kind", "", "asset kind: photo, video, or document (inferred when empty)")
	contentAddCmd.Flags().StringVar(&contentAddDescription, "description", "", "storefront description")
	contentAddCmd.Flags().StringVar(&contentAddPool, "pool", string(catalogDomain.PoolIndividual), "access pool: individual or subscription")
	_ = contentAddCmd.MarkFlagRequired("asset")

	contentUpdateCmd.Flags().Int64Var(&contentUpdatePrice, "price", 0, "new price in credits")
	contentUpdateCmd.Flags().StringVar(&contentUpdateDescription, "description", "", "new description")
	contentUpdateCmd.Flags().StringVar(&contentUpdateAsset, "asset", "", "new asset reference")
	contentUpdateCmd.Flags().StringVar(&contentUpdateKind, "kind", "", "asset kind for the new asset")
	contentUpdateCmd.Flags().StringVar(&contentUpdatePool, "pool", "", "new access pool")

	contentCmd.AddCommand(contentAddCmd)
	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentUpdateCmd)
	contentCmd.AddCommand(contentRemoveCmd)
	rootCmd.AddCommand(contentCmd)
}
