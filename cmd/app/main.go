package main

import (
	"context"
	"fmt"
	"os"

	"MyPay/internal/di"
	"MyPay/internal/domain/models"
	"MyPay/internal/usecase"
	"MyPay/pkg/config"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "mypay",
		Usage:   "Salary predictor with INR conversion",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config/config.yaml",
				Usage:   "config file path",
				EnvVars: []string{"MYPAY_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			predictCommand(),
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the web form, JSON API and rate feed",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}

	// Run application (blocks until signal)
	return app.Run(c.Context)
}

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Predict one salary and print the export row as CSV",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "years",
				Aliases:  []string{"y"},
				Usage:    "Years of experience (0-50)",
				Required: true,
			},
			&cli.Float64Flag{
				Name:    "job-rate",
				Aliases: []string{"r"},
				Value:   3.5,
				Usage:   "Job rate (0-10)",
			},
		},
		Action: predict,
	}
}

func predict(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	// stdout carries the CSV
	cfg.Logging.Output = "stderr"

	req, err := models.NewPredictionRequest(c.Int("years"), c.Float64("job-rate"))
	if err != nil {
		return err
	}

	pipeline, err := di.InitializePredictor(cfg)
	if err != nil {
		return fmt.Errorf("predictor initialization failed: %w", err)
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := pipeline.Predict(ctx, req, models.PredictionOptions{})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Predicted salary: $%s (INR %s, monthly INR %s) at rate %s\n",
		decimal.NewFromFloat(p.Result.USD).StringFixed(2),
		decimal.NewFromFloat(p.Result.INR).StringFixed(2),
		decimal.NewFromFloat(p.Result.MonthlyINR).StringFixed(2),
		decimal.NewFromFloat(p.Rate.Value).String(),
	)
	return usecase.WriteCSV(os.Stdout, p.Record)
}
