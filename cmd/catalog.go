package cmd

import (
	"io"
	"strconv"
	"strings"

	"s2-spectral/indextools"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type catalogEntry struct {
	ID    int      `yaml:"id"`
	Key   string   `yaml:"key"`
	Title string   `yaml:"title"`
	Kind  string   `yaml:"kind"`
	Bands []string `yaml:"bands"`
}

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the composites and indices that can be computed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("yaml") {
			return writeCatalogYAML(cmd.OutOrStdout())
		}
		writeCatalogTable(cmd.OutOrStdout())
		return nil
	},
}

func catalogEntries() []catalogEntry {
	ops := indextools.Catalog()
	entries := make([]catalogEntry, len(ops))
	for i, op := range ops {
		entries[i] = catalogEntry{op.ID, op.Key, op.Title, op.Kind.String(), op.Bands}
	}
	return entries
}

func writeCatalogYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(catalogEntries()); err != nil {
		return err
	}
	return enc.Close()
}

func writeCatalogTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Key", "Title", "Kind", "Bands"})
	table.SetAutoWrapText(false)
	for _, e := range catalogEntries() {
		table.Append([]string{strconv.Itoa(e.ID), e.Key, e.Title, e.Kind, strings.Join(e.Bands, " ")})
	}
	table.Render()
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().Bool("yaml", false, "Print the catalog as YAML")
}
