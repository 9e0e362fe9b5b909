package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	installPrefix string
	installReset  bool
	configPath    string
	logPath       string
	verbose       bool

	mainCmd = &cobra.Command{
		Use:   "simonsays",
		Short: "Simon Says memory game for Raspberry Pi buttons and LEDs",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	runCmd = &cobra.Command{
		Use:   "run [length]",
		Short: "Play on the configured GPIO backend",
		Args:  cobra.MaximumNArgs(1),
		Run:   runGame,
	}
	simulateCmd = &cobra.Command{
		Use:   "simulate [length]",
		Short: "Play in the terminal with the keyboard as buttons",
		Args:  cobra.MaximumNArgs(1),
		Run:   runSimulate,
	}
	installCmd = &cobra.Command{
		Use:  "install",
		Args: cobra.NoArgs,
		Run:  runInstall,
	}
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the default configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), configFile)
		},
	}
)

func runInstall(cmd *cobra.Command, args []string) {
	err := install(installPrefix, installReset)
	if err != nil {
		log.Fatalln("install:", err)
	}
}

func loadConfig(path string) (*Config, error) {
	var c Config
	_, err := toml.DecodeFile(path, &c)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("Path", path).Warnln("config not found, using defaults")
		_, err = toml.Decode(configFile, &c)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// parseLength reads the optional length argument.
func parseLength(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid length '%s', must be a positive integer", args[0])
	}
	return n, nil
}

func start(c *Config, args []string) {
	if err := c.Validate(); err != nil {
		log.Fatalln("config:", err)
	}
	length, err := parseLength(args, c.Length)
	if err != nil {
		log.Fatalln(err)
	}

	board, err := openBoard(c)
	if err != nil {
		log.Fatalln("open board:", err)
	}
	defer board.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"Backend": c.Backend,
		"Length":  length,
		"Buttons": len(c.Button),
	}).Infoln("starting")

	if err := play(ctx, c, board, length); err != nil {
		board.Close()
		log.Fatalln("play:", err)
	}
	log.Infoln("stopped")
}

func runGame(cmd *cobra.Command, args []string) {
	c, err := loadConfig(configPath)
	if err != nil {
		log.Fatalln("load config:", err)
	}
	start(c, args)
}

func runSimulate(cmd *cobra.Command, args []string) {
	c, err := loadConfig(configPath)
	if err != nil {
		log.Fatalln("load config:", err)
	}
	c.Backend = BackendTerminal

	// the simulator owns the screen
	f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalln("open log:", err)
	}
	defer f.Close()
	log.SetOutput(f)

	start(c, args)
}

func main() {
	installCmd.Flags().BoolVar(&installReset, "reset", false, "Reset config. Resets configuration to default, even if a config file already exists")
	installCmd.Flags().StringVarP(&installPrefix, "prefix", "p", "", "Install prefix. Prefix to install directory, default is /")
	simulateCmd.Flags().StringVar(&logPath, "log", "simonsays.log", "Log file. Where log output goes while the simulator owns the terminal")
	mainCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/simonsays.conf", "Config path. The path to the configuration file")
	mainCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose. Log every raw and resolved button press")
	mainCmd.AddCommand(runCmd, simulateCmd, installCmd, configCmd)
	if err := mainCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
