package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hashJSON bool

var hashCmd = &cobra.Command{
	Use:   "hash [image...]",
	Short: "Print the perceptual fingerprint of images",
	Long: `Computes the average hash of each image using the configured grid size.
Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHash,
}

func init() {
	hashCmd.Flags().BoolVar(&hashJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	if fingerprintService == nil {
		return errFingerprintNotConfigured
	}

	for _, path := range args {
		fp, err := fingerprintService.FingerprintFile(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("fingerprinting %s: %w", path, err)
		}

		if hashJSON {
			if err := printJSON(cmd, struct {
				Path        string `json:"path"`
				Fingerprint string `json:"fingerprint"`
				Algorithm   string `json:"algorithm"`
				Length      int    `json:"length"`
				Size        int    `json:"size"`
			}{path, fp.Hex, fp.Algorithm, fp.Length, fp.Size}); err != nil {
				return err
			}
			continue
		}
		cmd.Printf("%s  %s\n", fp.Hex, path)
	}
	return nil
}
