package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/privsec-lab/custodian/pkg/cli/config"
	"github.com/privsec-lab/custodian/pkg/service/worker"
	"github.com/privsec-lab/custodian/pkg/usecase"
	"github.com/privsec-lab/custodian/pkg/utils/logging"
)

// cmdSweep runs one dispatch pass over due notifications and scheduled
// events, then exits. Intended for cron-style deployments that do not run
// the in-process sweeper.
func cmdSweep() *cli.Command {
	var repoCfg config.Repository
	var policyCfg config.Policy
	var slackCfg config.Slack

	var flags []cli.Flag
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:  "sweep",
		Usage: "Dispatch due notifications and scheduled events once",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			pol, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load policy configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure Slack notifier")
			}

			var ucOpts []usecase.Option
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
			}

			uc, err := usecase.New(repo, pol, ucOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			sweeper := worker.NewSweeper(repo, uc.Breach, notifier, 0)
			if err := sweeper.RunOnce(ctx, time.Now().UTC()); err != nil {
				return goerr.Wrap(err, "sweep failed")
			}

			logging.Default().Info("Sweep completed")
			return nil
		},
	}
}
