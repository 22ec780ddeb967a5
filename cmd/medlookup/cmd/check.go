package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mBrond/chat-medicamentos/internal/adapters/directory"
	"github.com/mBrond/chat-medicamentos/internal/app"
	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the dataset and the facility directory and report problems",
	Long: "Loads the dataset with the same parser the server uses and fails on the first malformed row. " +
		"Also reports dispensing facilities that have no usable entry in the facility directory.",
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// CheckReport is what check prints
type CheckReport struct {
	Source      string                        `json:"source"`
	Version     string                        `json:"version"`
	LoadedIn    time.Duration                 `json:"loaded_in"`
	Records     int                           `json:"records"`
	Medications int                           `json:"medications"`
	Codes       int                           `json:"codes"`
	ByLocation  map[entities.LocationCode]int `json:"by_location"`
	NoLocation  int                           `json:"no_location"`
	// UnmappedFacilities are facility names the location answers can
	// produce that the directory cannot place on the map.
	UnmappedFacilities []string `json:"unmapped_facilities"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := openApp(app.Options{SkipDirectory: true})
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	ds, err := a.Resolution.Load(cmd.Context())
	if err != nil {
		if apperrors.IsDataLoad(err) {
			return fmt.Errorf("dataset is invalid: %w", err)
		}
		return err
	}

	report := summarize(ds)
	report.LoadedIn = time.Since(start)

	dir, err := directory.LoadJSONDirectory(a.Config.Directory.Path, nil)
	if err != nil {
		return err
	}
	translator := directory.NewStaticTranslator(directory.DefaultVocabulary())
	for _, name := range translator.Translate(entities.AllLocationCodes()) {
		if _, err := dir.Lookup(cmd.Context(), name); err != nil {
			report.UnmappedFacilities = append(report.UnmappedFacilities, name)
		}
	}

	if jsonFlag {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func summarize(ds *entities.Dataset) *CheckReport {
	report := &CheckReport{
		Source:     ds.Source,
		Version:    ds.Version,
		Records:    ds.Len(),
		ByLocation: make(map[entities.LocationCode]int),
	}

	names := make(map[string]struct{})
	codes := make(map[string]struct{})
	for _, r := range ds.Records {
		names[r.MedicationName] = struct{}{}
		if r.DiagnosisCode != "" {
			codes[r.DiagnosisCode] = struct{}{}
		}
		locations := r.ApplicableLocations()
		if len(locations) == 0 {
			report.NoLocation++
		}
		for _, loc := range locations {
			report.ByLocation[loc]++
		}
	}
	report.Medications = len(names)
	report.Codes = len(codes)
	return report
}

func printReport(w io.Writer, r *CheckReport) {
	fmt.Fprintf(w, "✓ %s\n", r.Source)
	fmt.Fprintf(w, "  version      %s\n", r.Version)
	fmt.Fprintf(w, "  records      %d (%d medications, %d codes) in %s\n", r.Records, r.Medications, r.Codes, r.LoadedIn.Round(time.Millisecond))
	for _, code := range entities.AllLocationCodes() {
		fmt.Fprintf(w, "  %-12s %d\n", code, r.ByLocation[code])
	}
	fmt.Fprintf(w, "  %-12s %d\n", "no location", r.NoLocation)

	if len(r.UnmappedFacilities) > 0 {
		fmt.Fprintf(w, "⚠ %d facilities missing from the directory:\n", len(r.UnmappedFacilities))
		for _, name := range r.UnmappedFacilities {
			fmt.Fprintf(w, "  - %s\n", name)
		}
	}
}
