package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/supportdesk/support-system/internal/core/authz"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
	"github.com/supportdesk/support-system/internal/core/service"
	"github.com/supportdesk/support-system/internal/infrastructure/config"
	"github.com/supportdesk/support-system/pkg/logger"
)

type principalFlags struct {
	email      string
	password   string
	nom        string
	prenom     string
	role       string
	entreprise string
	telephone  string
}

func newPrincipalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "principal",
		Short: "Manage agents and demandeurs",
	}
	cmd.AddCommand(newPrincipalCreateCommand())
	return cmd
}

func newPrincipalCreateCommand() *cobra.Command {
	var f principalFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an agent or a demandeur in the configured store",
		Long:  `Create a principal directly in the store, without going through the API. Useful to provision the first agent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrincipalCreate(cmd.Context(), cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.email, "email", "", "Login email")
	cmd.Flags().StringVar(&f.password, "password", "", "Password (at least 8 characters)")
	cmd.Flags().StringVar(&f.nom, "nom", "", "Last name")
	cmd.Flags().StringVar(&f.prenom, "prenom", "", "First name")
	cmd.Flags().StringVar(&f.role, "role", string(domain.RoleAgent), "agent or demandeur")
	cmd.Flags().StringVar(&f.entreprise, "entreprise", "", "Company (optional)")
	cmd.Flags().StringVar(&f.telephone, "telephone", "", "Phone (optional)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runPrincipalCreate(ctx context.Context, cmd *cobra.Command, f principalFlags) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.StoreDriver == config.StoreMemory {
		return fmt.Errorf("principal create needs a persistent store, STORE_DRIVER is %q", cfg.StoreDriver)
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "supportd"})

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	repos, err := openStore(ctx, cfg, logger.Component("store"))
	if err != nil {
		return err
	}
	defer func() { _ = repos.close(context.Background()) }()

	guard, err := authz.NewGuard()
	if err != nil {
		return err
	}
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, nil, logger.Component("tokens"))
	auth := service.NewAuthService(repos.principals, tokens, guard, logger.Component("auth"))

	p, err := auth.Provision(ctx, ports.RegisterPrincipalInput{
		Email:      f.email,
		Password:   f.password,
		Nom:        f.nom,
		Prenom:     f.prenom,
		Entreprise: &f.entreprise,
		Telephone:  &f.telephone,
		Role:       domain.Role(f.role),
	})
	if err != nil {
		return err
	}

	cmd.Printf("created %s %s (%s)\n", p.Role, p.Email, p.ID)
	return nil
}
