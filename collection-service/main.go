package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/museum/collection-server/collection-service/channel"
	"github.com/museum/collection-server/collection-service/config"
	"github.com/museum/collection-server/collection-service/controllers"
	"github.com/museum/collection-server/collection-service/notify"
	"github.com/museum/collection-server/collection-service/providers/email"
	"github.com/museum/collection-server/collection-service/repos"
	server "github.com/museum/collection-server/server-go"
	utils "github.com/museum/collection-server/utils-go"
	mail "github.com/xhit/go-simple-mail/v2"
	"go.uber.org/fx"
)

func main() {

	opts := []fx.Option{}
	opts = append(opts, provideOptions()...)
	opts = append(opts, fx.Invoke(run))

	app := fx.New(opts...)

	app.Run()
}

func provideOptions() []fx.Option {
	return []fx.Option{
		fx.Invoke(utils.ConfigureLogger),
		fx.Provide(config.Parse),
		fx.Invoke(func(config *config.Config) {
			utils.InitSharedConstants(*utils.ParsePublicKey(config.JwtPublicKey))
		}),
		fx.Provide(config.ProvidePostgres),
		fx.Provide(config.ProvideSmtp),
		fx.Provide(func(c *config.Config) *utils.RedisConfig {
			return &utils.RedisConfig{RedisUrl: c.RedisUrl}
		}),
		fx.Provide(utils.ProvideRedis),
		fx.Provide(channel.StartRedisChannel),
		fx.Provide(func(c *config.Config) (*server.Config, error) {
			return utils.ConvertConfig[*config.Config, server.Config](c)
		}),
		fx.Provide(server.CreateServer),
		fx.Provide(utils.GetDefaultRouter),
		fx.Provide(repos.NewNotificationRepo),
		fx.Provide(repos.NewUserRepo),
		fx.Provide(repos.NewArtifactRepo),
		fx.Provide(repos.NewDonationRepo),
		fx.Provide(provideNotifier),
		fx.Invoke(controllers.RegisterUserController),
		fx.Invoke(controllers.RegisterNotificationController),
		fx.Invoke(controllers.RegisterStreamController),
		fx.Invoke(controllers.RegisterArtifactController),
		fx.Invoke(controllers.RegisterDonationController),
	}
}

func provideNotifier(cfg *config.Config, repo *repos.NotificationRepo, redisChannel *channel.RedisChannel, smtp *mail.SMTPClient, users *repos.UserRepo, lc fx.Lifecycle) *notify.Notifier {
	var mailer notify.Mailer
	if smtp != nil {
		mailer = email.NewMailer(smtp, cfg.EmailConfig.From, users)
	}

	notifier := notify.NewNotifier(repo, redisChannel, mailer)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			notifier.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			notifier.Stop()
			return nil
		},
	})

	return notifier
}

func run(app *fiber.App, config *config.Config, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			errChan := make(chan error)

			go func() {
				errChan <- app.Listen(config.Port)
			}()

			select {
			case err := <-errChan:
				return err
			case <-time.After(100 * time.Millisecond):
				return nil
			}
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}
