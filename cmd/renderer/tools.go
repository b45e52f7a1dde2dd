package main

import (
	"context"
	"fmt"
	"io"

	"harpoon/publish"
	"harpoon/rgbimage"
	"harpoon/scenepack"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/prototext"
)

var cmdScenes = &cobra.Command{
	Use:   "scenes",
	Short: "List the built-in scenes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range scenepack.Names() {
			fmt.Println(name)
		}
		return nil
	},
}

var cmdInspect = &cobra.Command{
	Use:   "inspect <accumulator>",
	Short: "Print the header and sample statistics of a sample accumulator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(cmd.OutOrStdout(), args[0])
	},
}

func inspect(w io.Writer, name string) error {
	im, err := rgbimage.ReadFromFile(name)
	if err != nil {
		return fmt.Errorf("while reading accumulator: %w", err)
	}

	hdr, err := im.Header()
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}
	fmt.Fprintln(w, prototext.Format(hdr))

	pixels := im.RowSize * im.ColSize
	total := im.TotalSamples()
	fmt.Fprintf(w, "pixels: %d\n", pixels)
	fmt.Fprintf(w, "samples: %d\n", total)
	if pixels > 0 {
		fmt.Fprintf(w, "mean samples per pixel: %.2f\n", float64(total)/float64(pixels))
	}
	return nil
}

var convertOverwrite bool

var cmdConvert = &cobra.Command{
	Use:   "convert <accumulator> <png>",
	Short: "Convert a sample accumulator to a PNG, locally or on GCS",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		im, err := rgbimage.ReadFromFile(args[0])
		if err != nil {
			return fmt.Errorf("while reading accumulator: %w", err)
		}

		opts := publish.Options{
			Overwrite:       convertOverwrite,
			CredentialsFile: gcsCredentials,
		}
		if err := publish.WritePNG(context.Background(), args[1], im.ToImage(), opts); err != nil {
			return fmt.Errorf("while publishing png: %w", err)
		}
		return nil
	},
}

func init() {
	cmdConvert.Flags().BoolVar(&convertOverwrite, "overwrite", false, "Replace the destination if it exists")
	cmdConvert.Flags().StringVar(&gcsCredentials, "gcs-credentials", "", "Service account key file for GCS.  Empty uses Application Default Credentials.")
}
