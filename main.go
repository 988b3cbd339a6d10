package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"stl2png/convert"
	"stl2png/failure"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opt := &Options{}

	cmd := &cobra.Command{
		Use:   "stl2png <model> <dimensions> <output.png>",
		Short: "Render an STL model to a PNG image",
		Long: `stl2png loads a binary or ASCII STL file, lights it with a fixed studio
rig, looks at it diagonally from above and writes the rendered frame as a
PNG of exactly the requested size.`,
		Example: "  stl2png part.stl 640x480 part.png",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				return failure.Errorf(failure.Config, "usage: %s", cmd.UseLine())
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			width, height, err := parseDimensions(args[1])
			if err != nil {
				return err
			}
			opt.stlFile = args[0]
			opt.pngFile = args[2]
			opt.width = width
			opt.height = height
			return render(opt, cmd.ErrOrStderr())
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return failure.New(failure.Config, "", err)
	})

	cmd.Flags().BoolVarP(&opt.verbose, "verbose", "v", false, "Log conversion steps to stderr.")
	cmd.Flags().StringVar(&opt.cpuProfile, "cpuprofile", "", "Write CPU profile to file.")
	return cmd
}

func render(opt *Options, stderr io.Writer) error {
	if opt.cpuProfile != "" {
		f, err := os.Create(opt.cpuProfile)
		if err != nil {
			return failure.New(failure.IO, "create cpu profile", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return failure.New(failure.IO, "start cpu profile", err)
		}
		defer pprof.StopCPUProfile()
	}

	if opt.verbose {
		convert.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		defer convert.SetLogger(nil)
	}

	c, err := convert.New(opt.width, opt.height)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Convert(opt.stlFile, opt.pngFile)
}
