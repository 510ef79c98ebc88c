package cmd

import (
	"context"
	"fmt"

	domainScramble "github.com/AzielCF/az-cube/domains/scramble"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var scrambleCmd = &cobra.Command{
	Use:   "scramble",
	Short: "Print scrambles",
	Long:  `Prints scrambles from the configured scramble endpoint, or the local generator when it is unset.`,
	Run:   printScrambles,
}

func init() {
	scrambleCmd.Flags().IntP("count", "n", 1, "number of scrambles to print")
	scrambleCmd.Flags().IntP("length", "l", 0, "moves per scramble (default: the scrambleLength setting)")
	scrambleCmd.Flags().StringP("cube-type", "t", "", "cube type, 2x2 to 7x7 (default: the cubeType setting)")
	rootCmd.AddCommand(scrambleCmd)
}

func printScrambles(cmd *cobra.Command, _ []string) {
	defer StopApp()

	count, _ := cmd.Flags().GetInt("count")
	length, _ := cmd.Flags().GetInt("length")
	cubeType, _ := cmd.Flags().GetString("cube-type")

	eff := settings.Effective()
	if length == 0 {
		length = eff.ScrambleLength
	}
	if cubeType == "" {
		cubeType = string(eff.CubeType)
	}

	ctx := context.Background()
	for i := 0; i < count; i++ {
		res, err := scrambleUsecase.Generate(ctx, domainScramble.GenerateRequest{Length: length, CubeType: cubeType})
		if err != nil {
			logrus.Errorf("[SCRAMBLE] %v", err)
			return
		}
		fmt.Println(res.Scramble)
	}
}
