package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	settingsDomain "github.com/AzielCF/az-cube/core/settings/domain"
	domainSettings "github.com/AzielCF/az-cube/domains/settings"
	"github.com/AzielCF/az-cube/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the stored settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print every setting, or one of them",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		defer StopApp()
		if len(args) == 1 {
			if !settingsDomain.IsKnown(args[0]) {
				logrus.Errorf("[SETTINGS] unknown setting %q", args[0])
				return
			}
			fmt.Println(settings.Get(args[0]))
			return
		}
		printJSON(settings.All())
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		defer StopApp()
		svc := usecase.NewSettingsService(settings, metricsReg)
		values, err := svc.Update(context.Background(), domainSettings.UpdateRequest{
			Values: map[string]any{args[0]: args[1]},
		})
		if err != nil {
			logrus.Errorf("[SETTINGS] %v", err)
			return
		}
		printJSON(values)
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		defer StopApp()
		svc := usecase.NewSettingsService(settings, metricsReg)
		values, err := svc.Reset(context.Background())
		if err != nil {
			logrus.Errorf("[SETTINGS] %v", err)
			return
		}
		printJSON(values)
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logrus.Errorln(err)
		return
	}
	fmt.Println(string(out))
}
