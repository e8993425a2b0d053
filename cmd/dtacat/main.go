// Command dtacat converts between Stata .dta files and CSV.
package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/mwsohn/statadta"
	"github.com/spf13/cobra"
)

var (
	chunks       int
	keepOriginal bool
	maxBuffer    int
	verbose      bool
)

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "when encoding, print the columns that had to be excluded")

	decodeCmd.Flags().IntVar(&chunks, "chunks", statadta.DefaultChunks, "target number of row-slabs for the chunked reader on large files")
	decodeCmd.Flags().BoolVar(&keepOriginal, "keep-original", false, "show categorical values as \"code: label\" instead of just \"label\"")
	rootCmd.AddCommand(decodeCmd)

	encodeCmd.Flags().IntVar(&maxBuffer, "max-buffer", 1<<20, "maximum bytes of row data assembled in memory before flushing to disk")
	rootCmd.AddCommand(encodeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dtacat",
	Short: "dtacat converts between Stata .dta files and CSV",
	Long:  "dtacat converts between Stata .dta files and CSV",
}

var decodeCmd = &cobra.Command{
	Use:   "decode file.dta",
	Short: "decode a .dta file and print it to stdout as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := statadta.Read(args[0], chunks, keepOriginal)
		if err != nil {
			return fmt.Errorf("dtacat: decode %s: %w", args[0], err)
		}
		return writeCSV(os.Stdout, table)
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode file.csv file.dta",
	Short: "encode a CSV file as a .dta file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("dtacat: encode: %w", err)
		}
		defer f.Close()

		rdr := statadta.NewCSVReader(f)
		table, err := rdr.Read(-1)
		if err != nil {
			return fmt.Errorf("dtacat: reading %s: %w", args[0], err)
		}

		if err := statadta.Write(args[1], table, maxBuffer, verbose); err != nil {
			return fmt.Errorf("dtacat: writing %s: %w", args[1], err)
		}
		return nil
	},
}

// writeCSV renders a decoded table as CSV text: categorical columns print
// their label text, dates/datetimes print as RFC3339-ish date strings,
// missing cells print as an empty field.
func writeCSV(f *os.File, table *statadta.Table) error {
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(table.ColumnNames()); err != nil {
		return err
	}

	cols := table.Columns()
	row := make([]string, len(cols))
	for i := 0; i < table.RowCount(); i++ {
		for j, c := range cols {
			row[j] = cellText(c, i)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func cellText(c *statadta.Column, i int) string {
	if i < len(c.Missing) && c.Missing[i] {
		return ""
	}
	switch c.Kind {
	case statadta.KindInt8:
		return fmt.Sprintf("%d", c.Int8Data[i])
	case statadta.KindInt16:
		return fmt.Sprintf("%d", c.Int16Data[i])
	case statadta.KindInt32:
		return fmt.Sprintf("%d", c.Int32Data[i])
	case statadta.KindFloat32:
		return fmt.Sprintf("%g", c.Float32Data[i])
	case statadta.KindFloat64:
		return fmt.Sprintf("%g", c.Float64Data[i])
	case statadta.KindString, statadta.KindStrL:
		return c.StringData[i]
	case statadta.KindDate:
		return c.TimeData[i].Format("2006-01-02")
	case statadta.KindDateTime:
		return c.TimeData[i].Format("2006-01-02 15:04:05")
	case statadta.KindCategorical:
		return c.Categorical.Text(i)
	default:
		return ""
	}
}
