package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leostudiooo/GOOSE/internal/config"
	"github.com/leostudiooo/GOOSE/internal/service"
)

type app struct {
	cfg   config.Config
	quiet bool
}

func (a *app) service() *service.Service {
	reporter := service.Reporter(service.NopReporter{})
	if !a.quiet {
		log, err := zap.NewProduction()
		if err == nil {
			reporter = service.NewZapReporter(log)
		}
	}
	return service.NewService(a.cfg, reporter)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "goose",
		Short:         "Automated exercise record uploads",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env := config.Load()
			if a.cfg.ConfigDir == "" {
				a.cfg.ConfigDir = env.ConfigDir
			}
			if a.cfg.TrackDir == "" {
				a.cfg.TrackDir = env.TrackDir
			}
			if a.cfg.BaseURL == "" {
				a.cfg.BaseURL = env.BaseURL
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfg.ConfigDir, "config-dir", "",
		"directory holding headers, user and route documents")
	root.PersistentFlags().StringVar(&a.cfg.TrackDir, "track-dir", "",
		"directory holding the default per-route track files")
	root.PersistentFlags().StringVar(&a.cfg.BaseURL, "base-url", "",
		"override the service base URL")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false,
		"suppress progress output")

	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newUploadCmd(a))
	root.AddCommand(newRoutesCmd(a))
	root.AddCommand(newUserCmd(a))
	return root
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and credentials without submitting anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.service().Validate(cmd.Context())
			if err != nil {
				return explainErr(cmd, err)
			}
			cmd.Printf("everything checks out: student %s, route '%s', %.2f km in %d s\n",
				v.StudentID, v.Route.RouteName, v.Track.DistanceKm(), v.Track.DurationSec())
			return nil
		},
	}
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Submit one exercise record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.service().Upload(cmd.Context()); err != nil {
				return explainErr(cmd, err)
			}
			cmd.Println("record uploaded")
			return nil
		},
	}
}

func newRoutesCmd(a *app) *cobra.Command {
	routes := &cobra.Command{
		Use:   "routes",
		Short: "List the locally known routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.service().GetRouteNames()
			if err != nil {
				return explainErr(cmd, err)
			}
			for _, name := range names {
				cmd.Println(name)
			}
			return nil
		},
	}

	routes.AddCommand(&cobra.Command{
		Use:   "fetch",
		Short: "Refresh the local route catalog from the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			fetched, err := a.service().FetchRoutes(cmd.Context())
			if err != nil {
				return explainErr(cmd, err)
			}
			cmd.Printf("saved %d routes\n", len(fetched))
			return nil
		},
	})
	return routes
}

func newUserCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "user",
		Short: "Show the configured user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.service().GetUser()
			if err != nil {
				return explainErr(cmd, err)
			}
			cmd.Printf("route: %s\ndate: %s\nstart image: %s\nfinish image: %s\ncustom track: %v\n",
				user.Route, user.DateTime.Format("2006-01-02 15:04:05"),
				user.StartImage, user.FinishImage, user.CustomTrack.Enable)
			return nil
		},
	}
}

func explainErr(cmd *cobra.Command, err error) error {
	cmd.PrintErrln(service.Explain(err))
	return fmt.Errorf("goose: %w", err)
}
