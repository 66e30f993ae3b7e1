// Package app assembles the components into a running bot. Initialization
// follows strict dependency order: database, session state, gateway,
// dispatch, commands.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"badgerbot/internal/commands"
	"badgerbot/internal/config"
	"badgerbot/internal/cooldown"
	"badgerbot/internal/database"
	"badgerbot/internal/dispatch"
	"badgerbot/internal/expiry"
	"badgerbot/internal/gateway"
	"badgerbot/internal/producers"
	"badgerbot/internal/session"
)

// Application coordinates all system components.
type Application struct {
	cfg        *config.Config
	log        *logrus.Logger
	db         *database.Manager
	store      *session.Store
	cooldowns  *cooldown.Ledger
	gw         *gateway.Gateway
	scheduler  *expiry.Scheduler
	dispatcher *dispatch.Dispatcher
	registry   *commands.Registry
}

// NewApplication wires every component. Nothing touches the network until
// Run is called.
func NewApplication(cfg *config.Config, log *logrus.Logger) (*Application, error) {
	db, err := database.NewManager(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize course catalog: %w", err)
	}

	store := session.NewStore()
	cooldowns := cooldown.NewLedger()
	gw := gateway.New(cfg.Gateway, log)
	scheduler := expiry.NewScheduler(store, gw, log)

	p := cfg.Producers
	madgrades := producers.NewMadgradesClient(p.MadgradesURL, p.MadgradesKey, p.Timeout, log)
	ratings := producers.NewRateMyProfClient(p.RateMyProfURL, p.RateMyProfKey, p.Timeout, log)
	dining := producers.NewDiningClient(p.DiningURL, p.Timeout, log)
	gym := producers.NewGymClient(p.GymURL, p.GymKey, p.Timeout, log)
	clubs := producers.NewClubClient(p.ClubsURL, p.Timeout, log)
	guide := producers.NewGuideClient(p.GuideURL, p.Timeout, log)

	dispatcher := dispatch.NewDispatcher(
		store,
		cooldowns,
		gw,
		scheduler,
		db,
		ratings,
		dispatch.Formatters{
			CoursePage:   commands.CoursePage,
			RatingsPages: commands.RatingsPages,
		},
		dispatch.Config{
			CooldownWindow: cfg.Session.CooldownWindow,
			SessionTTL:     cfg.Session.TTL,
		},
		log,
	)
	pager := dispatcher.Paginator()

	registry := commands.NewRegistry(gw, log)
	registry.Register(commands.NewSearchCommand(madgrades, pager, gw, log))
	registry.Register(commands.NewCourseCommand(db, guide, gw, log))
	registry.Register(commands.NewProfessorCommand(ratings, pager, gw, log))
	registry.Register(commands.NewDiningCommand(dining, pager, gw, log))
	registry.Register(commands.NewGymCommand(gym, gw, log))
	registry.Register(commands.NewClubsCommand(clubs, pager, gw, log))
	registry.Register(commands.NewHelpCommand(registry, gw, log))

	gw.Route(registry.Dispatch, dispatcher.Handle)

	return &Application{
		cfg:        cfg,
		log:        log,
		db:         db,
		store:      store,
		cooldowns:  cooldowns,
		gw:         gw,
		scheduler:  scheduler,
		dispatcher: dispatcher,
		registry:   registry,
	}, nil
}

// Run connects to the gateway and blocks until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	a.log.WithField("commands", len(a.registry.List())).Info("starting badgerbot")
	return a.gw.Run(ctx)
}

// Close releases held resources. Safe to call after Run returns.
func (a *Application) Close() error {
	a.scheduler.Stop()
	return a.db.Close()
}
