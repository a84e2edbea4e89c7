package cmd

import (
	"fmt"
	"io"

	"s2-spectral/bandsio"
	"s2-spectral/bandtools"
	"s2-spectral/indextools"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"
)

// composeCmd represents the compose command
var composeCmd = &cobra.Command{
	Use:   "compose [band_dir]",
	Short: "Compute a band composite or spectral index",
	Long: `Load every band raster in band_dir, resample the bands onto the grid
	of the largest band and compute one operation from the catalog.

	Options:
		--op:             Catalog ID or key, see the catalog subcommand.
		--alpha:          Brightness factor for composites. Lower is darker.
		--save:           Save a PNG to band_dir/Compositions/<title>.png.
		--geotiff:        Also write the result to this GeoTIFF path.
		--colormap:       Colormap for index PNGs: viridis, gray or ndvi.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := indextools.Resolve(viper.GetString("op"))
		if err != nil {
			return err
		}
		cm, err := bandsio.ColormapByName(viper.GetString("colormap"))
		if err != nil {
			return err
		}

		coll, err := bandtools.Load(args[0], loadOptsFromConfig())
		if err != nil {
			return err
		}
		res, err := indextools.Compute(op, coll, indextools.Params{Alpha: viper.GetFloat64("alpha")})
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), res)

		if viper.GetBool("save") {
			path, err := bandsio.CompositionPath(args[0], op.Title)
			if err != nil {
				return err
			}
			if err := bandsio.SaveResult(path, res, cm); err != nil {
				return err
			}
			logrus.Infof("Saved %s to %s", op.Title, path)
		}
		if path := viper.GetString("geotiff"); path != "" {
			if err := bandsio.WriteGeoTIFF(path, coll.Grid, resultLayers(res)...); err != nil {
				return err
			}
		}
		return nil
	},
}

func printSummary(w io.Writer, res *indextools.Result) {
	s := res.Summary()
	fmt.Fprintf(w, "%s (%s)\n", res.Operation.Title, res.Operation.Kind)
	fmt.Fprintf(w, "min\t%.6g\nmax\t%.6g\nmean\t%.6g\nnon-finite\t%d\n", s.Min, s.Max, s.Mean, s.NonFinite)
}

func resultLayers(res *indextools.Result) []*mat.Dense {
	if res.Composite != nil {
		return res.Composite.Channels[:]
	}
	return []*mat.Dense{res.Index}
}

func init() {
	rootCmd.AddCommand(composeCmd)

	composeCmd.Flags().StringP("op", "o", "natural_color", "Catalog ID or key of the operation to compute")
	composeCmd.Flags().Float64("alpha", indextools.DefaultAlpha, "Brightness factor for composites")
	composeCmd.Flags().BoolP("save", "s", false, "Save a PNG under band_dir/Compositions")
	composeCmd.Flags().StringP("geotiff", "g", "", "Write the result to a GeoTIFF at this path")
	composeCmd.Flags().StringP("colormap", "c", bandsio.DefaultColormap, "Colormap for index PNGs")
	addLoadFlags(composeCmd)
}
