package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/retorno"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/config"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/service"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "cnabctl",
		Usage: "CNAB240 remessa and retorno tooling",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "log level written to stderr",
				EnvVars: []string{"CNABCTL_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			remessaCommand(),
			retornoCommand(),
			tokenCommand(),
		},
	}
}

func remessaCommand() *cli.Command {
	return &cli.Command{
		Name:      "remessa",
		Usage:     "render a remessa file from a JSON request",
		ArgsUsage: "<request.json|->",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "destination file", Required: true},
		},
		Action: func(c *cli.Context) error {
			logger := observability.NewLogger(c.String("log-level"))
			defer logger.Sync()

			if c.NArg() != 1 {
				return errors.New("remessa: expected exactly one request file")
			}
			raw, err := readInput(c.App.Reader, c.Args().First())
			if err != nil {
				return err
			}

			var req domain.RemessaRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("remessa: parse request: %w", err)
			}

			f, err := service.BuildRemessa(&req)
			if err != nil {
				return err
			}
			path, err := f.Save(c.String("output"))
			if err != nil {
				return err
			}

			logger.Info("remessa saved",
				zap.String("path", path),
				zap.Int("bank", req.Bank),
				zap.Int("titles", f.CountDetails()),
			)
			fmt.Fprintf(c.App.Writer, "%s: %d titles, %d records\n", path, f.CountDetails(), f.FileTrailer().RecordCount)
			return nil
		},
	}
}

func retornoCommand() *cli.Command {
	return &cli.Command{
		Name:      "retorno",
		Usage:     "decode retorno files into JSON",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "covenant", Usage: "covenant code overriding the header"},
			&cli.BoolFlag{Name: "dump", Usage: "print every decoded field instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			logger := observability.NewLogger(c.String("log-level"))
			defer logger.Sync()

			if c.NArg() == 0 {
				return errors.New("retorno: expected at least one file")
			}

			var opts []retorno.Option
			if cov := c.String("covenant"); cov != "" {
				opts = append(opts, retorno.WithCovenantCode(cov))
			}

			results := make([]*domain.RetornoResult, 0, c.NArg())
			for _, name := range c.Args().Slice() {
				data, err := os.ReadFile(name)
				if err != nil {
					return err
				}
				f, err := retorno.Parse(data, opts...)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				logger.Debug("retorno decoded", zap.String("file", name), zap.Int("details", len(f.Details())))

				if c.Bool("dump") {
					for _, d := range f.Details() {
						fmt.Fprintln(c.App.Writer, d.Dump())
					}
					continue
				}
				view := service.RetornoView(f)
				view.Name = filepath.Base(name)
				results = append(results, view)
			}
			if c.Bool("dump") {
				return nil
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			if len(results) == 1 {
				return enc.Encode(results[0])
			}
			return enc.Encode(results)
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an access token for the API using JWT_SECRET",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Usage: "token subject", Required: true},
		},
		Action: func(c *cli.Context) error {
			logger := observability.NewLogger(c.String("log-level"))
			defer logger.Sync()

			cfg := config.Load()
			auth := service.NewAuthService(cfg.JWTSecret, cfg.JWTAccessTTL, logger)

			tok, err := auth.IssueAccessToken(c.Context, c.String("subject"))
			if err != nil {
				return err
			}
			return json.NewEncoder(c.App.Writer).Encode(tok)
		},
	}
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if strings.TrimSpace(name) == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}
