// Package cli implements gamezonectl, the operator tool for a GameZone store.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gamezone/services/storefront-api/internal/auth"
	"gamezone/services/storefront-api/internal/repo"
	"gamezone/services/storefront-api/internal/service"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Backend is what the commands operate on.
type Backend struct {
	Store repo.Store
	// Migrate applies pending schema migrations; nil for backends without a schema.
	Migrate func(ctx context.Context) ([]string, error)
	Close   func()
}

// CacheCatalog wraps the product repository so every write drops the cached
// product list.
func (b *Backend) CacheCatalog(kv repo.KV, ttl time.Duration, log zerolog.Logger) {
	b.Store.Products = &repo.ProductsCached{Products: b.Store.Products, Redis: kv, TTL: ttl, Log: log}
}

// App carries the configuration shared by every command. Open is called
// once per command run.
type App struct {
	Config config.Config
	Log    zerolog.Logger
	Open   func(ctx context.Context, cfg config.Config) (Backend, error)
}

func (a *App) Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "gamezonectl",
		Short:         "Operate a GameZone store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(a.migrateCmd(), a.createAdminCmd(), a.seedCmd())
	return root
}

func (a *App) backend(cmd *cobra.Command) (Backend, error) {
	b, err := a.Open(cmd.Context(), a.Config)
	if err != nil {
		return Backend{}, err
	}
	if b.Close == nil {
		b.Close = func() {}
	}
	return b, nil
}

func (a *App) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.backend(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			if b.Migrate == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "storage %q has no schema to migrate\n", a.Config.Storage.Driver)
				return nil
			}
			applied, err := b.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied: %s\n", strings.Join(applied, ", "))
			return nil
		},
	}
}

func (a *App) createAdminCmd() *cobra.Command {
	var in service.RegisterInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.backend(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			svc := &service.AuthService{
				Users:  b.Store.Users,
				Hasher: auth.Hasher{Cost: a.Config.Auth.BcryptCost},
				Log:    a.Log,
			}
			u, err := svc.CreateAdmin(cmd.Context(), in)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "administrator %s <%s> created with id %d\n", u.Name, u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (at least 6 characters)")
	cmd.Flags().StringVar(&in.Address, "address", "", "postal address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *App) seedCmd() *cobra.Command {
	var (
		file      string
		owner     string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load products from a YAML catalog file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			products, err := ParseCatalog(f)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			b, err := a.backend(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			admin, err := b.Store.Users.GetByEmail(cmd.Context(), owner)
			if err != nil {
				return describe(err)
			}
			res, err := Seed(cmd.Context(), &service.ProductService{Products: b.Store.Products, Log: a.Log}, admin, products, overwrite)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d, skipped %d\n", res.Created, res.Updated, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "catalog file")
	cmd.Flags().StringVar(&owner, "owner", "", "email of the administrator the products belong to")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "update products whose name already exists instead of skipping them")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

// describe keeps the catalog type visible in CLI output.
func describe(err error) error {
	if e, ok := apperr.As(err); ok {
		return fmt.Errorf("%s: %s", e.Type, e.PublicMessage())
	}
	return err
}
