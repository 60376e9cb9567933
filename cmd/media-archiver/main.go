package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arendv/media-archiver/pkg/createdat"
	"github.com/arendv/media-archiver/pkg/move"
	"github.com/arendv/media-archiver/pkg/plan"
	"github.com/arendv/media-archiver/pkg/scan"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

type options struct {
	verbose bool
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "media-archiver",
		Short:   "A CLI tool to archive media files by capture date",
		Long:    "Media Archiver resolves the capture date of photos and videos (EXIF, container metadata, filename patterns) and moves them into a year-partitioned directory tree.",
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Media Archiver CLI")
			cmd.Printf("Version: %s\n", version)
			if opts.verbose {
				cmd.Println("Verbose mode: enabled")
			}
			cmd.Println("")
			cmd.Println("Use --help to see available commands and options")
		},
	}

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newOrganizeCmd(opts))
	rootCmd.AddCommand(newScanCmd(opts))

	return rootCmd
}

type organizeFlags struct {
	execute      bool
	jsonOut      bool
	probeTimeout time.Duration
}

func newOrganizeCmd(opts *options) *cobra.Command {
	var flags organizeFlags

	cmd := &cobra.Command{
		Use:   "organize [source] [organized] [skipped]",
		Short: "Organize media files from source into a year-partitioned tree",
		Long: "Organize resolves a capture date for every file under the source root and moves it to <organized>/<year>/YYYY-MM-DD HH.MM.SS<ext>. " +
			"Files without a resolvable date, and files of unsupported types, are moved to the skipped root under their original name. " +
			"Without --execute nothing is moved; the planned operations are printed instead.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(cmd, opts, flags, args[0], args[1], args[2])
		},
	}

	cmd.Flags().BoolVar(&flags.execute, "execute", false, "perform the moves (default is a dry run)")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "print operations as JSON")
	cmd.Flags().DurationVar(&flags.probeTimeout, "probe-timeout", createdat.DefaultProbeTimeout, "maximum duration of one ffprobe invocation")

	return cmd
}

// fileOp pairs a planned operation with the scan record and resolution it
// came from.
type fileOp struct {
	op     plan.Operation
	record scan.Record
	res    createdat.Result
}

func runOrganize(cmd *cobra.Command, opts *options, flags organizeFlags, source, organized, skipped string) error {
	sourceAbs, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("source root: %w", err)
	}
	st, err := os.Stat(sourceAbs)
	if err != nil {
		return fmt.Errorf("source root: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("source root %s is not a directory", source)
	}

	scanOpts := scan.DefaultOptions()
	for _, out := range []string{organized, skipped} {
		if rel, ok := relUnder(sourceAbs, out); ok {
			scanOpts.Exclude = append(scanOpts.Exclude, rel)
		}
	}

	records, err := scan.ScanRecords(os.DirFS(sourceAbs), ".", scanOpts)
	if err != nil {
		return fmt.Errorf("scan %s: %w", source, err)
	}

	if opts.verbose {
		cmd.PrintErrf("found %d file(s) under %s\n", len(records), source)
	}

	resolveOpts := createdat.Options{ProbeTimeout: flags.probeTimeout}
	existing := make(map[string]bool)

	fileOps := make([]fileOp, 0, len(records))
	for _, r := range records {
		srcPath := filepath.Join(sourceAbs, filepath.FromSlash(r.Path))

		if opts.verbose {
			cmd.PrintErrf("processing: %s\n", srcPath)
		}

		res := createdat.Resolve(cmd.Context(), srcPath, r.Class, resolveOpts)

		var op plan.Operation
		if res.Resolved() {
			op = plan.Operation{
				SourcePath:      srcPath,
				DestinationPath: plan.Destination(organized, res.CreatedAt, filepath.Ext(r.Path), existing),
				Action:          plan.ActionOrganize,
			}
		} else {
			op = plan.Operation{
				SourcePath:      srcPath,
				DestinationPath: plan.SkipDestination(skipped, filepath.Base(r.Path), existing),
				Action:          plan.ActionSkip,
			}
		}

		fileOps = append(fileOps, fileOp{op: op, record: r, res: res})
	}

	if !flags.execute {
		if flags.jsonOut {
			return printJSON(cmd, toJSONOperations(fileOps, nil))
		}
		for _, f := range fileOps {
			if f.op.Action == plan.ActionOrganize {
				cmd.Printf("%s -> %s\n", f.op.SourcePath, f.op.DestinationPath)
			} else {
				cmd.Printf("skip (%s): %s -> %s\n", f.res.Reason, f.op.SourcePath, f.op.DestinationPath)
			}
		}
		return nil
	}

	ops := make([]plan.Operation, len(fileOps))
	for i, f := range fileOps {
		ops[i] = f.op
	}
	results := move.Execute(ops)

	var organizedCount, skippedCount, failedCount int
	for i, res := range results {
		f := fileOps[i]
		if !res.Success {
			failedCount++
			cmd.PrintErrf("error: %s: %v\n", res.Operation.SourcePath, res.Error)
			continue
		}
		if f.op.Action == plan.ActionOrganize {
			organizedCount++
			cmd.Printf("organized (%s): %s -> %s\n", f.res.Source, res.Operation.SourcePath, res.FinalPath)
		} else {
			skippedCount++
			cmd.Printf("skipped (%s): %s -> %s\n", f.res.Reason, res.Operation.SourcePath, res.FinalPath)
		}
	}

	if flags.jsonOut {
		if err := printJSON(cmd, toJSONOperations(fileOps, results)); err != nil {
			return err
		}
	}

	cmd.Printf("organized %d, skipped %d, failed %d\n", organizedCount, skippedCount, failedCount)
	if failedCount > 0 {
		return fmt.Errorf("%d file(s) failed", failedCount)
	}
	return nil
}

// relUnder reports whether path lies under root, returning its
// slash-separated relative path when it does.
func relUnder(root, path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

type jsonOperation struct {
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
	Action          string `json:"action"`
	CreatedAt       string `json:"created_at,omitempty"`
	DateSource      string `json:"date_source,omitempty"`
	Reason          string `json:"reason,omitempty"`
	FileSizeBytes   int64  `json:"file_size_bytes"`
	FinalPath       string `json:"final_path,omitempty"`
	Error           string `json:"error,omitempty"`
}

func toJSONOperations(fileOps []fileOp, results []move.Result) []jsonOperation {
	out := make([]jsonOperation, 0, len(fileOps))
	for i, f := range fileOps {
		op := jsonOperation{
			SourcePath:      f.op.SourcePath,
			DestinationPath: f.op.DestinationPath,
			Action:          string(f.op.Action),
			Reason:          f.res.Reason,
			FileSizeBytes:   f.record.FileSizeBytes,
		}
		if f.res.Resolved() {
			op.CreatedAt = f.res.CreatedAt.Format("2006-01-02 15:04:05")
			op.DateSource = string(f.res.Source)
		}
		if results != nil {
			op.FinalPath = results[i].FinalPath
			if results[i].Error != nil {
				op.Error = results[i].Error.Error()
			}
		}
		out = append(out, op)
	}
	return out
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newScanCmd(opts *options) *cobra.Command {
	var maxDepth int
	var jsonOut bool

	scanCmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Scan a directory for media files",
		Long:  "Scan a directory and print all media files found (relative to the scan root).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			directory := args[0]

			scanOpts := scan.DefaultOptions()
			scanOpts.MaxDepth = maxDepth

			records, err := scan.ScanRecords(os.DirFS(directory), ".", scanOpts)
			if err != nil {
				return err
			}

			media := make([]scan.Record, 0, len(records))
			for _, r := range records {
				if r.Class == scan.ClassUnsupported {
					continue
				}
				media = append(media, r)
			}

			if jsonOut {
				if err := printJSON(cmd, media); err != nil {
					return err
				}
			} else {
				for _, r := range media {
					cmd.Println(r.Path)
				}
			}

			if opts.verbose {
				cmd.PrintErrf("found %d media files\n", len(media))
			}

			return nil
		},
	}

	scanCmd.Flags().IntVar(&maxDepth, "max-depth", -1, "maximum recursion depth (0 = no recursion)")
	scanCmd.Flags().BoolVar(&jsonOut, "json", false, "print full records as JSON")

	return scanCmd
}
