// Command deskctl checks catalog files and builds order messages and links
// from the terminal, using the same rules as the bot and the web storefront.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"saffron-order-desk/internal/catalog"
	"saffron-order-desk/internal/order"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	catalogPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "deskctl",
		Short:        "Catalog and order tools for the order desk",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "catalog YAML file (default: bundled catalog)")

	root.AddCommand(
		newValidateCmd(opts),
		newProductsCmd(opts),
		newComposeCmd(opts),
		newLinkCmd(opts),
		newContactCmd(opts),
	)
	return root
}

func (o *rootOptions) load() (*catalog.Catalog, error) {
	return catalog.Load(strings.TrimSpace(o.catalogPath))
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the catalog file loads and passes validation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %s, %d products\n", cat.Brand.Name, len(cat.Products))
			return nil
		},
	}
}

func newProductsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List product ids in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range cat.Products {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Unit, p.PriceRange)
			}
			return nil
		},
	}
}

func newComposeCmd(opts *rootOptions) *cobra.Command {
	var (
		items    []string
		note     string
		withLink bool
	)

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose the order message for a set of items",
		Example: `  deskctl compose --item mongra-saffron=2 --item pistachios=1 --note "gift wrap"
  deskctl compose --item medjool-dates=3 --link`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.load()
			if err != nil {
				return err
			}

			o, err := buildOrder(cat, items)
			if err != nil {
				return err
			}
			o.SetNote(note)

			out := cmd.OutOrStdout()
			if withLink {
				fmt.Fprintln(out, o.CheckoutLink(cat))
				return nil
			}
			fmt.Fprintln(out, o.Message(cat))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&items, "item", nil, "product id and quantity as id=qty (repeatable)")
	cmd.Flags().StringVar(&note, "note", "", "order note")
	cmd.Flags().BoolVar(&withLink, "link", false, "print the WhatsApp link instead of the message")
	return cmd
}

// buildOrder applies id=qty pairs in flag order. A repeated id keeps the
// last quantity; a missing quantity means 1.
func buildOrder(cat *catalog.Catalog, items []string) (*order.Order, error) {
	o := order.New(cat.IDs())
	for _, item := range items {
		id, raw, found := strings.Cut(strings.TrimSpace(item), "=")
		id = strings.TrimSpace(id)
		if _, err := cat.Lookup(id); err != nil {
			return nil, fmt.Errorf("item %q: %w", item, err)
		}

		qty := order.MinQuantity
		if found {
			qty = order.ParseQuantity(raw)
		}
		o.AddOrUpdate(id, qty)
	}
	return o, nil
}

func newLinkCmd(opts *rootOptions) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print a WhatsApp link for a free-form message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(message) == "" {
				message = cat.Brand.DefaultMessage
			}
			fmt.Fprintln(cmd.OutOrStdout(), order.WhatsAppLink(cat.Brand.WhatsAppNumber, message))
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "message text (default: the catalog inquiry message)")
	return cmd
}

func newContactCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "contact",
		Short: "Print the shop contact links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.load()
			if err != nil {
				return err
			}
			b := cat.Brand
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "whatsapp\t%s\n", order.WhatsAppLink(b.WhatsAppNumber, b.DefaultMessage))
			fmt.Fprintf(out, "phone\t%s\n", order.PhoneLink(b.PhoneDisplay))
			fmt.Fprintf(out, "email\t%s\n", order.MailLink(b.Email))
			fmt.Fprintf(out, "address\t%s\n", b.Address)
			fmt.Fprintf(out, "hours\t%s\n", b.BusinessHours)
			return nil
		},
	}
}
