package cmd

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/josephlewis42/myshell/commands"
	"github.com/josephlewis42/myshell/core/config"
	"github.com/josephlewis42/myshell/core/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog"
	"k8s.io/klog/klogr"
)

// VerbosityEnv overrides the default diagnostic verbosity.
const VerbosityEnv = "MYSHELL_VERBOSITY"

var (
	cfgPath     string
	commandLine string

	// exitStatus is set by the root command and returned by the process.
	exitStatus int
)

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".myshell"
	}
	return filepath.Join(home, ".myshell")
}

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// loadConfigOrDefault is loadConfig, but falls back to the built-in
// configuration if none has been initialized.
func loadConfigOrDefault() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		klogr.New().V(1).Info("no configuration, using defaults", "path", cfgPath)
		return config.Default(), nil
	}
	return configuration, err
}

// rootCmd runs the shell when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   commands.Name,
	Short: "A small interactive Unix shell.",
	Long: `A small interactive Unix shell with pipelines, redirection, background
jobs, variables and history.

With -c the command line is run and the shell exits, otherwise lines are read
from the terminal until EOF or exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		defer klog.Flush()

		cfg, err := loadConfigOrDefault()
		if err != nil {
			return err
		}

		opts := []commands.Option{commands.Logger(klogr.New().WithName("shell"))}

		logFd, err := cfg.OpenEventLog()
		switch {
		case err == nil:
			defer logFd.Close()
			opts = append(opts, commands.EventLogger(logger.NewJsonLinesLogRecorder(logFd)))
		case !errors.Is(err, config.ErrNoStorage):
			return err
		}

		sh, err := commands.NewShell(cfg, opts...)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("command") {
			sh.RunLine(commandLine)
			exitStatus = sh.Status()
		} else {
			exitStatus = sh.RunInteractive()
		}

		return sh.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitStatus)
}

// klogFlags exposes klog's verbosity flags, seeded from VerbosityEnv.
func klogFlags() *pflag.FlagSet {
	goFlags := flag.NewFlagSet(commands.Name, flag.ContinueOnError)
	klog.InitFlags(goFlags)
	goFlags.Set("skip_headers", "true")
	if v := os.Getenv(VerbosityEnv); v != "" {
		goFlags.Set("v", v)
	}

	flags := pflag.NewFlagSet("klog", pflag.ContinueOnError)
	for _, name := range []string{"v", "vmodule"} {
		flags.AddGoFlag(goFlags.Lookup(name))
	}
	return flags
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "config path")
	rootCmd.PersistentFlags().AddFlagSet(klogFlags())
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run `COMMAND` and exit")
}
