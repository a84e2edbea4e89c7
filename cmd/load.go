package cmd

import (
	"runtime"
	"strings"

	"s2-spectral/bandtools"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// addLoadFlags registers the band loading flags shared by compose and
// indexcells.
func addLoadFlags(cmd *cobra.Command) {
	def := bandtools.DefaultLoadOpts()
	cmd.Flags().Int("start", def.Start, "Lowest band number to load")
	cmd.Flags().Int("end", def.End, "Highest band number to load")
	cmd.Flags().StringSliceP("extensions", "e", def.Extensions, "Accepted band file extensions")
	cmd.Flags().StringP("reference-band", "r", "", "Band whose grid all bands are resampled to. Default is the band with the most pixels")
	cmd.Flags().IntP("numWorkers", "n", runtime.NumCPU(), "Number of workers to spawn for parallel processing")
}

func loadOptsFromConfig() bandtools.LoadOpts {
	opts := bandtools.DefaultLoadOpts()
	opts.Start = viper.GetInt("start")
	opts.End = viper.GetInt("end")
	if exts := viper.GetStringSlice("extensions"); len(exts) > 0 {
		opts.Extensions = exts
	}
	opts.ReferenceBand = strings.ToUpper(viper.GetString("reference-band"))
	opts.NumWorkers = viper.GetInt("numWorkers")
	opts.ShowProgress = viper.GetBool("verbose") || viper.GetBool("debug")
	return opts
}
