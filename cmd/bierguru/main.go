package main

import (
	"os"

	"github.com/go-go-golems/bierguru/cmd/bierguru/cmds"
	clay "github.com/go-go-golems/clay/pkg"
	"github.com/go-go-golems/glazed/pkg/cli"
	glazed_cmds "github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/logging"
	"github.com/go-go-golems/glazed/pkg/help"
	help_cmd "github.com/go-go-golems/glazed/pkg/help/cmd"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bierguru",
	Short: "bierguru talks to Vocatus, the beer guru chat",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.InitLoggerFromCobra(cmd); err != nil {
			return err
		}
		return cmds.TrackLogTarget(cmd)
	},
}

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Work with the transcript stream",
}

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		cobra.CheckErr(errors.Wrap(err, "could not load .env"))
	}

	if err := clay.InitGlazed("bierguru", rootCmd); err != nil {
		cobra.CheckErr(err)
	}

	helpSystem := help.NewHelpSystem()
	help_cmd.SetupCobraRootCommand(helpSystem, rootCmd)

	chatCmd, err := cmds.NewChatCommand()
	cobra.CheckErr(err)
	askCmd, err := cmds.NewAskCommand()
	cobra.CheckErr(err)
	inspectCmd, err := cmds.NewInspectCommand()
	cobra.CheckErr(err)
	followCmd, err := cmds.NewFollowCommand()
	cobra.CheckErr(err)

	for _, c := range []glazed_cmds.Command{chatCmd, askCmd, inspectCmd} {
		command, err := cli.BuildCobraCommand(c, cli.WithCobraMiddlewaresFunc(cmds.GetMiddlewares))
		cobra.CheckErr(err)
		rootCmd.AddCommand(command)
	}

	command, err := cli.BuildCobraCommand(followCmd, cli.WithCobraMiddlewaresFunc(cmds.GetMiddlewares))
	cobra.CheckErr(err)
	transcriptCmd.AddCommand(command)
	rootCmd.AddCommand(transcriptCmd)

	cobra.CheckErr(rootCmd.Execute())
}
