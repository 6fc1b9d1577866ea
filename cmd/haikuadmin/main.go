package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli"
)

var (
	version = "dev"
	commit  string
	date    string
)

const defaultConfigPath = "./config.yaml"

var configFlag = cli.StringFlag{
	Name:   "config, c",
	Usage:  "path to the config file (yaml or json)",
	Value:  defaultConfigPath,
	EnvVar: "HAIKUADMIN_CONFIG",
}

func main() {
	app := cli.App{
		Name:     "haikuadmin",
		HelpName: "haikuadmin",
		Usage:    "haiku administration site and slicer scheduler",
		Version:  version,
		Commands: []cli.Command{
			{
				Name:   "serve",
				Usage:  "run the admin web site and the slicer scheduler",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:  "admin",
				Usage: "manage administrator accounts",
				Subcommands: []cli.Command{
					{
						Name:   "create",
						Usage:  "create an administrator without going through the site",
						Action: createAdmin,
						Flags: []cli.Flag{
							configFlag,
							cli.StringFlag{
								Name:  "username, u",
								Usage: "administrator username",
							},
							cli.StringFlag{
								Name:   "password, p",
								Usage:  "administrator password",
								EnvVar: "HAIKUADMIN_PASSWORD",
							},
						},
					},
				},
			},
			{
				Name:   "version",
				Usage:  "print the version and build info",
				Action: printVersion,
			},
		},
		HideVersion: true,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Printf("haikuadmin: %s\n", err.Error())
		os.Exit(1)
	}
}

func printVersion(*cli.Context) error {
	fmt.Printf("haikuadmin %s (%s_%s)\n", version, runtime.GOOS, runtime.GOARCH)
	if commit != "" || date != "" {
		fmt.Printf("Build: %s=%s\n", date, commit)
	}
	return nil
}
