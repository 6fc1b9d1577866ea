package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"haikuadmin/internal/app"
	logx "haikuadmin/pkg/logx"
)

func serve(c *cli.Context) error {
	a, err := app.NewApp(c.String("config"))
	if err != nil {
		return fmt.Errorf("fatal: %w", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		_ = a.Stop(context.Background(), app.StopFatalError)
		return fmt.Errorf("fatal start: %w", err)
	}

	reason := app.StopUnknown
	select {
	case sig := <-sigs:
		reason = app.StopSIGTERM
		if sig == os.Interrupt {
			reason = app.StopSIGINT
		}
	case <-a.Done():
		reason = app.StopFatalError
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := a.Stop(stopCtx, reason); err != nil {
		return err
	}
	if reason == app.StopFatalError {
		return a.Err()
	}
	return nil
}

func createAdmin(c *cli.Context) error {
	username, password := c.String("username"), c.String("password")
	if username == "" || password == "" {
		return errors.New("admin create: --username and --password are required")
	}
	log := logx.NewConsole("warn")
	admin, err := app.CreateAdministrator(context.Background(), c.String("config"), username, password, log)
	if err != nil {
		return err
	}
	fmt.Printf("created administrator %q (id %d)\n", admin.Username, admin.ID)
	return nil
}
