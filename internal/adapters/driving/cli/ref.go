package cli

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
)

var (
	refJSON        bool
	refTag         string
	refTitle       string
	refDescription string
	refSourceURL   string
	refTags        []string
)

var refCmd = &cobra.Command{
	Use:     "ref",
	Aliases: []string{"refs", "reference"},
	Short:   "Manage the reference library",
	Long:    `List, inspect, add and delete reference brand images.`,
}

var refListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reference images, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRefList,
}

var refGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a reference image",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefGet,
}

var refAddCmd = &cobra.Command{
	Use:   "add [image]",
	Short: "Add an image to the reference library",
	Long: `Fingerprints a local image and stores it in the reference library.

Example:
  brandlens ref add logo.png --title "Acme logo" --tags logo,primary`,
	Args: cobra.ExactArgs(1),
	RunE: runRefAdd,
}

var refDeleteCmd = &cobra.Command{
	Use:     "delete [id]",
	Aliases: []string{"rm"},
	Short:   "Delete a reference image and its asset",
	Args:    cobra.ExactArgs(1),
	RunE:    runRefDelete,
}

var refPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Permanently remove deleted references",
	Long: `Removes references that were deleted but are still kept by the store.
Only the sqlite backend keeps deleted rows; other backends report zero.`,
	Args: cobra.NoArgs,
	RunE: runRefPurge,
}

func init() {
	refListCmd.Flags().BoolVar(&refJSON, "json", false, "output as JSON")
	refListCmd.Flags().StringVar(&refTag, "tag", "", "only list references with this tag")
	refGetCmd.Flags().BoolVar(&refJSON, "json", false, "output as JSON")

	refAddCmd.Flags().StringVarP(&refTitle, "title", "t", "", "reference title")
	refAddCmd.Flags().StringVarP(&refDescription, "description", "d", "", "reference description")
	refAddCmd.Flags().StringVar(&refSourceURL, "source-url", "", "where the image came from")
	refAddCmd.Flags().StringSliceVar(&refTags, "tags", nil, "comma-separated tags")

	refCmd.AddCommand(refListCmd)
	refCmd.AddCommand(refGetCmd)
	refCmd.AddCommand(refAddCmd)
	refCmd.AddCommand(refDeleteCmd)
	refCmd.AddCommand(refPurgeCmd)
	rootCmd.AddCommand(refCmd)
}

func runRefList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	entries, err := libraryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list references: %w", err)
	}
	if refTag != "" {
		filtered := entries[:0]
		for i := range entries {
			if entries[i].HasTag(refTag) {
				filtered = append(filtered, entries[i])
			}
		}
		entries = filtered
	}

	if refJSON {
		return printJSON(cmd, entries)
	}

	if len(entries) == 0 {
		cmd.Println("No reference images.")
		return nil
	}

	st := stylesFor(cmd.OutOrStdout())
	rows := make([][]string, len(entries))
	for i := range entries {
		e := &entries[i]
		rows[i] = []string{
			e.ID,
			displayTitle(&e.ReferenceImage),
			e.FingerprintAlgorithm,
			e.Fingerprint,
			strings.Join(e.Tags, ","),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
		}
	}
	cmd.Print(table(st, []string{"ID", "TITLE", "ALG", "FINGERPRINT", "TAGS", "ADDED"}, rows))
	cmd.Println(st.Muted.Render(fmt.Sprintf("%d reference(s)", len(entries))))
	return nil
}

func runRefGet(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	entry, err := libraryService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get reference %s: %w", args[0], err)
	}

	if refJSON {
		return printJSON(cmd, entry)
	}
	printReference(cmd, entry)
	return nil
}

func runRefAdd(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}
	if fingerprintService == nil {
		return errFingerprintNotConfigured
	}

	path := args[0]
	fp, err := fingerprintService.FingerprintFile(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("fingerprinting %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	title := refTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	entry, err := libraryService.Add(cmd.Context(), driving.AddReferenceRequest{
		Asset: &driving.UploadedAsset{
			Reader:       f,
			OriginalName: filepath.Base(path),
			MimeType:     mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
			Size:         info.Size(),
		},
		Title:                title,
		Description:          refDescription,
		SourceURL:            refSourceURL,
		Tags:                 refTags,
		Fingerprint:          fp.Hex,
		FingerprintAlgorithm: fp.Algorithm,
		FingerprintLength:    strconv.Itoa(fp.Length),
	})
	if err != nil {
		return fmt.Errorf("failed to add reference: %w", err)
	}

	cmd.Printf("Added reference %s (%s)\n", entry.ID, entry.Fingerprint)
	return nil
}

func runRefDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	removed, err := libraryService.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete reference: %w", err)
	}
	if removed == nil {
		return fmt.Errorf("reference %s: %w", args[0], domain.ErrNotFound)
	}

	cmd.Printf("Deleted reference %s (%s)\n", removed.ID, displayTitle(removed))
	return nil
}

func runRefPurge(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	n, err := libraryService.Purge(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to purge references: %w", err)
	}

	cmd.Printf("Purged %d deleted reference(s)\n", n)
	return nil
}

func printReference(cmd *cobra.Command, e *domain.ReferenceEntry) {
	st := stylesFor(cmd.OutOrStdout())
	field := func(label, value string) {
		if value != "" {
			cmd.Printf("%s %s\n", st.Label.Render(fmt.Sprintf("%-12s", label+":")), value)
		}
	}

	cmd.Println(st.Title.Render(displayTitle(&e.ReferenceImage)))
	field("ID", e.ID)
	field("Description", e.Description)
	field("Source", e.SourceURL)
	field("Tags", strings.Join(e.Tags, ", "))
	field("Fingerprint", e.Fingerprint)
	field("Algorithm", e.FingerprintAlgorithm)
	field("Length", strconv.Itoa(e.EffectiveLength()))
	field("File", e.FileName)
	field("Asset", e.AssetURL)
	if e.UploadedBy != nil {
		field("Uploaded by", firstNonEmpty(e.UploadedBy.Email, e.UploadedBy.ID))
	}
	field("Added", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
