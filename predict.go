package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/krau/lesionscan/preprocess"
	"github.com/krau/lesionscan/server"
	"github.com/spf13/cobra"
)

func newPredictCmd(cfgPath *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "predict <image>",
		Short: "Classify a single image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd.Context(), *cfgPath, args[0], asJSON, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func runPredict(ctx context.Context, cfgPath, imagePath string, asJSON bool, out io.Writer) error {
	a, err := newApp(cfgPath)
	if err != nil {
		return err
	}
	defer a.close()

	f, err := os.Open(imagePath)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := preprocess.Decode(f, a.decodeOptions())
	if err != nil {
		return err
	}
	res, err := a.engine.Classify(ctx, img)
	if err != nil {
		return err
	}

	resp := server.NewPredictResponse(res)
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	_, err = fmt.Fprintf(out, "Diagnosis: %s\nMedical category: %s\nProbability: %s\n",
		resp.Label, resp.MedicalCategory, resp.Probability)
	return err
}
