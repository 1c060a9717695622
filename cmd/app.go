package cmd

import (
	"github.com/habedi/photofeed/auth"
	"github.com/habedi/photofeed/client"
	"github.com/habedi/photofeed/config"
	"github.com/habedi/photofeed/db"
	"github.com/habedi/photofeed/feed"
	"github.com/habedi/photofeed/notify"
	"github.com/habedi/photofeed/pkg/clierr"
	"github.com/habedi/photofeed/profile"
	"github.com/habedi/photofeed/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app holds the services a command works with.
type app struct {
	cfg      *config.Config
	client   *client.Client
	notifier *notify.Notifier
	auth     *auth.Session
	feed     *feed.Synchronizer
	avatar   *profile.AvatarResolver
	profile  *profile.Service
	teardown *session.Teardown
}

func openApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, clierr.New(clierr.Validation, "Failed to load configuration: "+err.Error(), err)
	}

	db.Path = cfg.DB.Path
	if err := db.InitDB(); err != nil {
		return nil, clierr.New(clierr.Internal, "Failed to open the database at "+db.Path+".", err)
	}

	c := client.New(cfg.API)
	n := notify.New()
	a := &app{cfg: cfg, client: c, notifier: n}
	a.auth = auth.NewSession(db.NewSecretRepository(db.GetDB()), c)
	a.feed = feed.NewSynchronizer(c, a.auth, n, feed.Options{AccessKey: cfg.API.AccessKey, PerPage: cfg.API.PerPage})
	a.avatar = profile.NewAvatarResolver(c, a.auth, n)
	a.profile = profile.NewService(c, a.auth)
	a.teardown = &session.Teardown{
		Feed:      a.feed,
		Avatar:    a.avatar,
		Profile:   a.profile,
		Tokens:    a.auth,
		Cookies:   c,
		Publisher: n,
	}

	for _, topic := range []notify.Topic{notify.FeedChanged, notify.AvatarChanged, notify.SessionEnded} {
		n.Subscribe(topic, logEvent)
	}
	return a, nil
}

func logEvent(ev notify.Event) {
	e := log.Debug().Str("topic", string(ev.Topic))
	if ev.URL != "" {
		e = e.Str("url", ev.URL)
	}
	e.Msg("State changed")
}

// Close drains pending events and closes the database.
func (a *app) Close() {
	a.notifier.Close()
	if err := db.CloseDB(); err != nil {
		log.Error().Err(err).Msg("Failed to close the database.")
	}
}

type appRunFunc func(cmd *cobra.Command, args []string, a *app) error

// withApp opens the services for the duration of one command.
func withApp(configPath *string, run appRunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(*configPath)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}
