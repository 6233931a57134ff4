package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/josephlewis42/jobsh/core/config"
	"github.com/josephlewis42/jobsh/core/logger"
	"github.com/josephlewis42/jobsh/core/proc"
	"github.com/josephlewis42/jobsh/core/shell"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	command string

	exitStatus int
)

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// loadShellConfig falls back to the built in configuration when there is
// none on disk.
func loadShellConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return configuration, err
}

// openEvents opens the event log named in the configuration. The returned
// close function is always safe to call.
func openEvents(configuration *config.Configuration) (*logger.Logger, func() error, error) {
	fd, err := configuration.OpenEventLog()
	switch {
	case errors.Is(err, afero.ErrFileNotFound):
		return logger.NewDiscardLogger(), func() error { return nil }, nil
	case err != nil:
		return nil, nil, err
	}

	return logger.NewJsonLinesLogRecorder(fd), fd.Close, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jobsh",
	Short: "A job-control shell",
	Long: `A small interactive shell that runs programs from PATH as jobs.

Each line is a program and its arguments, optionally followed by
"< file", "> file" and a trailing "&" to run it in the background.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadShellConfig()
		if err != nil {
			return err
		}

		recorder, closeEvents, err := openEvents(configuration)
		if err != nil {
			return err
		}
		defer closeEvents()
		events := recorder.NewSession()

		session, err := proc.NewSession(int(os.Stdin.Fd()))
		if err != nil {
			return err
		}
		defer session.Close()

		events.Record(&logger.TerminalUpdate{
			Interactive: session.Interactive,
			ShellPgid:   session.ShellPgid,
		})

		sh := shell.New(configuration, session, events)
		sh.Stdout = cmd.OutOrStdout()
		sh.Stderr = cmd.ErrOrStderr()

		if cmd.Flags().Changed("command") {
			exitStatus = sh.RunCommand(command)
		} else {
			exitStatus = sh.Run()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitStatus)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.Flags().StringVarP(&command, "command", "c", "", "run a single command line and exit")
}
