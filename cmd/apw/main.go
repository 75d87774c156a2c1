package main

import (
	"errors"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/apw"
	goerrors "github.com/go-errors/errors"
	"github.com/urfave/cli/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const defaultDB = "apw.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

var conversionFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "colors",
		Usage: "reduce the image to at most `N` colors first, 0 to disable",
	},
	&cli.BoolFlag{
		Name:  "dither",
		Usage: "dither when reducing colors",
	},
	&cli.IntFlag{
		Name:  "fit-width",
		Usage: "shrink the image to at most `WIDTH` pixels wide",
	},
	&cli.IntFlag{
		Name:  "fit-height",
		Usage: "shrink the image to at most `HEIGHT` pixels high",
	},
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newConverter(c *cli.Context) (*apw.Converter, *log.Logger, error) {
	logger := newLogger(c)
	conv, err := apw.New(c.String("db"), logger, apw.Options{
		FitWidth:  c.Int("fit-width"),
		FitHeight: c.Int("fit-height"),
		Colors:    c.Int("colors"),
		Dither:    c.Bool("dither"),
	})
	return conv, logger, err
}

func exit(err error, logger *log.Logger) error {
	var goErr *goerrors.Error
	if errors.As(err, &goErr) {
		logger.Print(goErr.ErrorStack())
	}
	return cli.NewExitError(err, 1)
}

func main() {
	app := cli.NewApp()

	app.Name = "apw"
	app.Usage = "APW image conversion utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"APW_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to conversion cache database, empty to disable",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "encode",
			Usage:       "Convert an image to APW",
			Description: "Decodes a GIF, JPEG, PNG, BMP, TIFF or WebP image and writes it in APW format.",
			ArgsUsage:   "INPUT OUTPUT",
			Flags:       conversionFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() != 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				conv, logger, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer conv.Close()

				if err := conv.ConvertFile(c.Args().Get(0), c.Args().Get(1)); err != nil {
					return exit(err, logger)
				}

				return nil
			},
		},
		{
			Name:        "render",
			Usage:       "Draw an APW image onto a display and save it as PNG",
			Description: "Emulates a display of the given size so clipping and wrapping can be checked.",
			ArgsUsage:   "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "width",
					Value: 320,
					Usage: "display width",
				},
				&cli.IntFlag{
					Name:  "height",
					Value: 240,
					Usage: "display height",
				},
				&cli.IntFlag{
					Name:  "x",
					Usage: "left edge of the image",
				},
				&cli.IntFlag{
					Name:  "y",
					Usage: "top edge of the image",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() != 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)
				conv, err := apw.New("", logger, apw.Options{})
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer conv.Close()

				if err := conv.Render(c.Args().Get(0), c.Args().Get(1), c.Int("width"), c.Int("height"), c.Int("x"), c.Int("y")); err != nil {
					return exit(err, logger)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem and convert images",
			Description: "Converts every image found, writing an .apw file next to each one and a bundle per directory.",
			ArgsUsage:   "DIRECTORY",
			Flags:       conversionFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				conv, logger, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer conv.Close()

				if err := conv.Scan(c.Args().First()); err != nil {
					return exit(err, logger)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
