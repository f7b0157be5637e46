package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
)

var (
	searchFingerprint   string
	searchImage         string
	searchAlgorithm     string
	searchLength        int
	searchMinSimilarity float64
	searchLimit         int
	searchJSON          bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find references similar to an image or fingerprint",
	Long: `Ranks the reference library against a query fingerprint.

Pass --fingerprint with a hex fingerprint, or --image to fingerprint a local
file first. Matches are ordered by descending similarity.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchFingerprint, "fingerprint", "f", "", "hex fingerprint to match")
	searchCmd.Flags().StringVarP(&searchImage, "image", "i", "", "image file to fingerprint and match")
	searchCmd.Flags().StringVar(&searchAlgorithm, "algorithm", "", "fingerprint algorithm (default ahash)")
	searchCmd.Flags().IntVar(&searchLength, "length", 0, "declared fingerprint length in hex digits")
	searchCmd.Flags().Float64Var(&searchMinSimilarity, "min-similarity", 0, "minimum similarity between 0 and 1")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of matches (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.MarkFlagsMutuallyExclusive("fingerprint", "image")
	searchCmd.MarkFlagsOneRequired("fingerprint", "image")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errSearchNotConfigured
	}

	req := driving.SearchRequest{
		Fingerprint: searchFingerprint,
		Algorithm:   searchAlgorithm,
	}
	if searchImage != "" {
		if fingerprintService == nil {
			return errFingerprintNotConfigured
		}
		fp, err := fingerprintService.FingerprintFile(cmd.Context(), searchImage)
		if err != nil {
			return fmt.Errorf("fingerprinting %s: %w", searchImage, err)
		}
		req.Fingerprint = fp.Hex
		req.Algorithm = fp.Algorithm
	}
	if searchLength > 0 {
		req.Length = strconv.Itoa(searchLength)
	}
	if cmd.Flags().Changed("min-similarity") {
		req.MinSimilarity = strconv.FormatFloat(searchMinSimilarity, 'f', -1, 64)
	}
	if searchLimit != 0 {
		req.Limit = strconv.Itoa(searchLimit)
	}

	resp, err := searchService.Search(cmd.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, resp)
	}
	outputSearchTable(cmd, resp)
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) {
	st := stylesFor(cmd.OutOrStdout())

	cmd.Println(st.Muted.Render(fmt.Sprintf("Query %s (%s), %d candidates evaluated in %dms",
		resp.Query.Fingerprint, resp.Query.Algorithm, resp.Summary.Evaluated, resp.Summary.ExecutionTimeMs)))

	if len(resp.Matches) == 0 {
		cmd.Println("No matches found.")
		return
	}

	rows := make([][]string, len(resp.Matches))
	for i := range resp.Matches {
		m := &resp.Matches[i]
		rows[i] = []string{
			strconv.Itoa(i + 1),
			st.Score(m.Similarity).Render(fmt.Sprintf("%.4f", m.Similarity)),
			strconv.Itoa(m.Distance),
			displayTitle(&m.ReferenceImage),
			m.ID,
			strings.Join(m.Tags, ","),
		}
	}
	cmd.Print(table(st, []string{"#", "SIMILARITY", "DISTANCE", "TITLE", "ID", "TAGS"}, rows))
}

func displayTitle(ref *domain.ReferenceImage) string {
	if ref.Title != "" {
		return ref.Title
	}
	if ref.FileName != "" {
		return ref.FileName
	}
	return "(untitled)"
}
