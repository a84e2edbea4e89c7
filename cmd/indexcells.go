package cmd

import (
	"fmt"
	"time"

	"s2-spectral/bandtools"
	"s2-spectral/cellsio"
	"s2-spectral/celltools"
	"s2-spectral/indextools"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// indexcellsCmd represents the indexcells command
var indexcellsCmd = &cobra.Command{
	Use:   "indexcells [band_dir] [output_path]",
	Short: "Compute a spectral index and aggregate it onto S2 cells",
	Long: `Compute a spectral index from the bands in band_dir and write a
	parquet, CSV or GeoJSON file (picked from the output extension) containing
	S2 cell IDs, aggregated index values, cell areas and cell outlines.

	The bands must be georeferenced. Projected grids are reprojected to
	WGS84 before cells are assigned.

	Options:
		--op:         Catalog ID or key of an index, composites are rejected.
		--numWorkers: Number of workers to spawn for parallel processing. Not recommended
		              to exceed number of CPU cores.
		--s2Lvl:      S2 cell level to generate results for. Essentially output resolution.
		--aggFunc:    Function to use when aggregating to S2 cell. Default is the mean,
		              choose from: mean, sum, max, min`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := indextools.Resolve(viper.GetString("op"))
		if err != nil {
			return err
		}
		if op.Kind != indextools.KindIndex {
			return fmt.Errorf("%s is a %s, indexcells needs an index", op.Key, op.Kind)
		}
		if _, err := cellsio.Format(args[1]); err != nil {
			return err
		}

		coll, err := bandtools.Load(args[0], loadOptsFromConfig())
		if err != nil {
			return err
		}
		res, err := indextools.Compute(op, coll, indextools.DefaultParams())
		if err != nil {
			return err
		}

		opts := celltools.ConfigOpts{
			NumWorkers: viper.GetInt("numWorkers"),
			S2Lvl:      viper.GetInt("s2Lvl"),
			AggFunc:    chooseAggFunc(viper.GetString("aggFunc")),
		}
		start := time.Now()
		cells, err := celltools.IndexToS2(res.Index, coll.Grid, opts)
		if err != nil {
			return err
		}
		logrus.Infof("Aggregated %s onto %d S2 cells in %v", op.Key, len(cells), time.Since(start))

		return cellsio.WriteCells(cells, args[1])
	},
}

func chooseAggFunc(funcFlag string) celltools.AggFunc {
	aggFunc, ok := celltools.AggFuncByName(funcFlag)
	if !ok {
		logrus.Warnf("Aggregation function %s not recognized, using mean", funcFlag)
		return celltools.Mean
	}
	return aggFunc
}

func init() {
	rootCmd.AddCommand(indexcellsCmd)

	indexcellsCmd.Flags().StringP("op", "o", "ndvi", "Catalog ID or key of the index to compute")
	indexcellsCmd.Flags().IntP("s2Lvl", "l", 11, "S2 cell level to generate results for. Essentially output resolution")
	indexcellsCmd.Flags().StringP("aggFunc", "a", "mean", "Function to use when aggregating to S2 cell, choose from: mean, sum, max, min")
	addLoadFlags(indexcellsCmd)
}
