package main

import (
	"fmt"
	"os"

	"github.com/arducam/jetson-io/internal/cmd"
	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/version"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Configure the pins of the Jetson expansion headers.
func main() {
	app := cli.NewApp()
	app.Name = "jetson-io"
	app.Usage = "configure the pins of the Jetson expansion headers"
	app.Version = version.GetVersion()
	app.Authors = []*cli.Author{{Name: "Arducam"}}
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "debug",
			EnvVars: []string{"JETSON_IO_DEBUG"},
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "env file overriding the default paths",
			Value: constants.DefaultConfigFile,
		},
		&cli.StringFlag{
			Name:  "boot-dir",
			Usage: "directory holding the overlays and the dtb directory",
		},
	}
	app.Commands = append(cmd.Commands, &cli.Command{
		Name:  "version",
		Usage: "print the build information",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "yaml",
				Usage: "print as yaml",
			},
		},
		Action: func(c *cli.Context) error {
			v := version.Get()
			if !c.Bool("yaml") {
				fmt.Fprintln(c.App.Writer, v.String())
				return nil
			}
			out, err := yaml.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Fprint(c.App.Writer, string(out))
			return nil
		},
	})

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
