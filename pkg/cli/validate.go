package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/privsec-lab/custodian/pkg/cli/config"
	"github.com/privsec-lab/custodian/pkg/utils/logging"
)

// cmdValidate checks a policy TOML file without starting anything
func cmdValidate() *cli.Command {
	var policyCfg config.Policy

	return &cli.Command{
		Name:  "validate",
		Usage: "Validate a policy configuration file",
		Flags: policyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			pol, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "policy validation failed")
			}

			logging.Default().Info("Policy configuration is valid",
				"frameworks", len(pol.Frameworks),
				"stages", len(pol.Stages),
			)
			return nil
		},
	}
}
