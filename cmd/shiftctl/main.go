package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joey603/sidour-avoda/internal/config"
	"github.com/joey603/sidour-avoda/internal/domain"
	"github.com/joey603/sidour-avoda/internal/observability"
	"github.com/joey603/sidour-avoda/pkg/client"
)

func main() {
	cmd := flag.String("cmd", "whoami", "Command: login|register|logout|whoami|sites|delete-site|site-info|enroll")
	login := flag.String("login", "", "Email or phone for login/register")
	password := flag.String("password", "", "Password for login/register")
	fullName := flag.String("name", "", "Full name (register) or worker name (enroll)")
	role := flag.String("role", "worker", "Account role: worker|director")
	siteID := flag.String("site", "", "Site id (delete-site/site-info/enroll)")
	filter := flag.String("filter", "", "Case-insensitive name filter for sites")
	maxShifts := flag.Int("max-shifts", 1, "Maximum shifts per week (enroll)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	store, err := client.NewFileTokenStore(cfg.Client.TokenPath)
	if err != nil {
		log.Fatalf("failed to open token store: %v", err)
	}

	api := client.New(cfg.Client.BaseURL, store,
		client.WithLogger(logger),
		client.WithUnauthorizedHook(func() {
			fmt.Println("Session expired, please log in again.")
		}),
	)

	wake := client.RetryPolicy{
		AttemptTimeout: time.Duration(cfg.Client.WakeAttemptTimeout) * time.Second,
		TotalDeadline:  time.Duration(cfg.Client.WakeDeadlineSeconds) * time.Second,
		InitialBackoff: time.Second,
		MaxBackoff:     8 * time.Second,
	}
	resolver := client.NewSessionResolver(api, wake, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, *cmd, api, resolver, wake, runArgs{
		login:     *login,
		password:  *password,
		fullName:  *fullName,
		role:      domain.Role(*role),
		siteID:    *siteID,
		filter:    *filter,
		maxShifts: *maxShifts,
	}); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

type runArgs struct {
	login     string
	password  string
	fullName  string
	role      domain.Role
	siteID    string
	filter    string
	maxShifts int
}

func run(ctx context.Context, cmd string, api *client.Client, resolver *client.SessionResolver, wake client.RetryPolicy, args runArgs) error {
	switch cmd {
	case "login":
		identity, err := resolver.LoginAs(ctx, args.login, args.password, args.role)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", identity.FullName, identity.Role)
		return nil

	case "register":
		if err := api.Register(ctx, client.Registration{
			FullName: args.fullName,
			Email:    args.login,
			Password: args.password,
			Role:     string(args.role),
		}); err != nil {
			return err
		}
		fmt.Println("Registered and logged in.")
		return nil

	case "logout":
		return api.Logout()

	case "whoami":
		identity, err := resolver.ResolveIdentity(ctx)
		if err != nil {
			return err
		}
		if identity == nil {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s (%s)\n", identity.FullName, identity.Role)
		if identity.DirectorCode != "" {
			fmt.Printf("Director code: %s\n", identity.DirectorCode)
		}
		return nil

	case "sites":
		guard := resolver.GuardFor(ctx, domain.RoleDirector, "/director/sites")
		switch guard.Action {
		case client.GuardRedirectLogin:
			return fmt.Errorf("not logged in; log in as a director first (would redirect to %s)", guard.Path)
		case client.GuardRedirectHome:
			return fmt.Errorf("this view is for directors; your home is %s", guard.Path)
		}
		list := client.NewSiteList(api, wake, nil)
		if err := list.Load(ctx); err != nil {
			return err
		}
		for _, site := range list.Filter(args.filter) {
			fmt.Printf("%s  %s  (%d workers)\n", site.ID, site.Name, site.WorkersCount)
		}
		return nil

	case "delete-site":
		list := client.NewSiteList(api, wake, nil)
		if err := list.Load(ctx); err != nil {
			return err
		}
		outcome, err := list.Remove(ctx, args.siteID)
		switch outcome {
		case client.RemoveSucceeded:
			fmt.Println("Site deleted.")
			return nil
		case client.RemoveFailedRestored:
			return fmt.Errorf("deletion failed, site kept: %w", err)
		default:
			return fmt.Errorf("deletion state unclear, list refreshed: %w", err)
		}

	case "site-info":
		info, err := api.SiteInfo(ctx, args.siteID)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", info.Name, info.ID)
		for _, shift := range info.Shifts {
			fmt.Printf("  %s %s-%s x%d\n", shift.Day, shift.Start, shift.End, shift.Capacity)
		}
		return nil

	case "enroll":
		if err := api.RegisterWorker(ctx, args.siteID, client.WorkerRegistration{
			Name:      args.fullName,
			MaxShifts: args.maxShifts,
		}); err != nil {
			return err
		}
		fmt.Println("Enrolled.")
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
