package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/cli/config"
	"github.com/secmon-lab/grc-risk/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdToken() *cli.Command {
	var authCfg config.Auth
	var personID int64

	flags := append([]cli.Flag{
		&cli.Int64Flag{
			Name:        "person-id",
			Usage:       "Person id the token acts as",
			Required:    true,
			Destination: &personID,
		},
	}, authCfg.TokenFlags()...)

	return &cli.Command{
		Name:  "token",
		Usage: "Issue a bearer token for a person",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			token, err := usecase.IssueToken(authCfg.Secret(), personID, time.Now(), authCfg.TTL())
			if err != nil {
				return goerr.Wrap(err, "failed to issue token", goerr.V("person_id", personID))
			}
			fmt.Fprintln(output, token)
			return nil
		},
	}
}
