package cli

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/api"
	"github.com/supportdesk/support-system/internal/api/handler"
	"github.com/supportdesk/support-system/internal/core/authz"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
	"github.com/supportdesk/support-system/internal/core/service"
	"github.com/supportdesk/support-system/internal/infrastructure/config"
	"github.com/supportdesk/support-system/internal/infrastructure/db/memory"
	"github.com/supportdesk/support-system/internal/infrastructure/db/mongo"
	"github.com/supportdesk/support-system/internal/infrastructure/db/redis"
	"github.com/supportdesk/support-system/internal/infrastructure/email"
	"github.com/supportdesk/support-system/internal/infrastructure/queue"
	"github.com/supportdesk/support-system/pkg/logger"
)

// repositories is the storage backend selected by STORE_DRIVER.
type repositories struct {
	principals          ports.PrincipalRepository
	clients             ports.ClientRepository
	tickets             ports.TicketRepository
	portabilites        ports.PortabiliteRepository
	ticketEchanges      ports.EchangeRepository
	portabiliteEchanges ports.EchangeRepository
	ping                handler.Check
	close               func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using the in-memory store, data is lost on restart")
		s := memory.NewStore()
		return &repositories{
			principals:          s.Principals(),
			clients:             s.Clients(),
			tickets:             s.Tickets(),
			portabilites:        s.Portabilites(),
			ticketEchanges:      s.Echanges(domain.ThreadTicket),
			portabiliteEchanges: s.Echanges(domain.ThreadPortabilite),
			ping:                s.Ping,
			close:               func(context.Context) error { return nil },
		}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, err
	}
	s := mongo.NewStore(client, db)

	indexCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	defer cancel()
	if err := s.EnsureIndexes(indexCtx); err != nil {
		_ = s.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")

	return &repositories{
		principals:          s.Principals(),
		clients:             s.Clients(),
		tickets:             s.Tickets(),
		portabilites:        s.Portabilites(),
		ticketEchanges:      s.Echanges(domain.ThreadTicket),
		portabiliteEchanges: s.Echanges(domain.ThreadPortabilite),
		ping:                s.Ping,
		close:               s.Disconnect,
	}, nil
}

// app owns every long-lived dependency of the server.
type app struct {
	cfg        *config.Config
	repos      *repositories
	redis      *goredis.Client
	dispatcher *queue.Dispatcher
	auth       *service.AuthService
	deps       api.Deps
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.Component("app")

	repos, err := openStore(ctx, cfg, logger.Component("store"))
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, repos: repos}
	checks := map[string]handler.Check{"store": repos.ping}

	var revoker ports.TokenRevoker
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:           cfg.Redis.Addr,
			Password:       cfg.Redis.Password,
			DB:             cfg.Redis.DB,
			CommandTimeout: cfg.Redis.Timeout,
		})
		if err != nil {
			_ = repos.close(context.Background())
			return nil, err
		}
		a.redis = rdb
		revocations := redis.NewRevocationList(rdb)
		revoker = revocations
		checks["redis"] = revocations.Ping
		log.Info().Str("addr", cfg.Redis.Addr).Msg("token revocation list enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, logout does not revoke tokens")
	}

	var mailer ports.Mailer = email.NewLogMailer(logger.Component("mailer"))
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPMailer(email.SMTPConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			FromAddress: cfg.SMTP.FromAddress,
			FromName:    cfg.SMTP.FromName,
		})
	}
	composer := email.NewComposer(email.ComposerConfig{
		SupportAddress: cfg.Notify.SupportAddress,
		BaseURL:        cfg.Notify.BaseURL,
	}, repos.principals, mailer, email.NewRenderer(), logger.Component("notifications"))

	a.dispatcher = queue.NewDispatcher(queue.Config{
		Workers:         cfg.Notify.Workers,
		Buffer:          cfg.Notify.Buffer,
		DeliveryTimeout: cfg.Notify.Timeout,
	}, composer, logger.Component("dispatcher"))
	a.dispatcher.Start(context.Background())

	guard, err := authz.NewGuard()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("authorization guard: %w", err)
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, revoker, logger.Component("tokens"))
	a.auth = service.NewAuthService(repos.principals, tokens, guard, logger.Component("auth"))
	numbering := service.NewNumbering(repos.portabilites, nil, cfg.NumberingMaxAttempts, logger.Component("numbering"))

	a.deps = api.Deps{
		Tokens:       tokens,
		Auth:         a.auth,
		Clients:      service.NewClientService(repos.clients, repos.tickets, repos.portabilites, guard, logger.Component("clients")),
		Tickets:      service.NewTicketService(repos.tickets, repos.clients, repos.principals, guard, a.dispatcher, logger.Component("tickets")),
		Portabilites: service.NewPortabiliteService(repos.portabilites, repos.portabiliteEchanges, repos.clients, repos.principals, numbering, guard, a.dispatcher, logger.Component("portabilites")),
		Echanges:     service.NewEchangeService(repos.ticketEchanges, repos.portabiliteEchanges, repos.tickets, repos.portabilites, repos.principals, guard, a.dispatcher, logger.Component("echanges")),
		Checks:       checks,
		CORSOrigins:  cfg.CORSOrigins,
		Log:          logger.Component("http"),
	}
	return a, nil
}

// bootstrap seeds the default agent. Failures are logged and never fatal.
func (a *app) bootstrap(ctx context.Context) {
	log := logger.Component("bootstrap")
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	created, err := a.auth.EnsureDefaultAgent(ctx, service.DefaultAgent{
		Email:    a.cfg.DefaultAgent.Email,
		Password: a.cfg.DefaultAgent.Password,
		Nom:      a.cfg.DefaultAgent.Nom,
		Prenom:   a.cfg.DefaultAgent.Prenom,
	})
	if err != nil {
		log.Error().Err(err).Msg("default agent bootstrap failed, continuing")
		return
	}
	if !created {
		log.Debug().Msg("default agent bootstrap skipped")
	}
}

// close drains pending notifications, then releases connections.
func (a *app) close() {
	log := logger.Component("app")
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.repos.close(ctx); err != nil {
		log.Error().Err(err).Msg("store close failed")
	}
}
