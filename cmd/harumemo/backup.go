package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/harumemo"
	"github.com/aretw0/harumemo/pkg/adapters/fs"
	"github.com/aretw0/harumemo/pkg/backup"
)

var (
	exportFormat string
	exportOut    string

	importFormat string
	importDryRun bool
	importYes    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a backup of every note",
	Long: `Encode every note with the chosen codec (json, yaml or text) and write it
to --out, or to a dated file name in the current directory. Use "-" for stdout.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		codec, err := backup.DefaultRegistry().Get(exportFormat)
		if err != nil {
			fatal("Unknown format", err)
		}

		svc := openService(context.Background())
		defer svc.Close()

		export, err := backup.Render(svc, codec, time.Now())
		if err != nil {
			fatal("Failed to export", err)
		}

		if exportOut == "-" {
			os.Stdout.Write(export.Data)
			return
		}
		out := exportOut
		if out == "" {
			out = export.FileName
		}
		if err := os.WriteFile(out, export.Data, 0644); err != nil {
			fatal("Failed to write backup", err)
		}
		fmt.Printf("Exported %d notes to %s\n", export.Count, out)
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Merge a backup into the notes",
	Long: `Decode a backup file and merge it into the store. Notes in the file replace
notes on the same day; other days are left alone. Invalid entries are skipped
and listed. Nothing is written when the file holds no valid note.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var data []byte
		select {
		case res := <-fs.ReadFileAsync(ctx, args[0]):
			if res.Err != nil {
				fatal("Failed to read backup", res.Err)
			}
			data = res.Data
		case <-ctx.Done():
			fatal("Import cancelled", ctx.Err())
		}

		svc := openService(ctx)
		defer svc.Close()

		importer := harumemo.NewImporter(slog.Default())
		plan, err := importer.Plan(svc, backup.Request{
			Format:   importFormat,
			Filename: filepath.Base(args[0]),
			Data:     data,
		})
		for _, s := range plan.Skipped {
			fmt.Printf("skipped %s: %s\n", s.Key, s.Reason)
		}
		if err != nil {
			fatal("Failed to import", err)
		}

		fmt.Printf("%d notes (%s), %d would replace existing days\n", len(plan.Notes), plan.Codec, len(plan.Overwrites))
		if importDryRun {
			return
		}
		if len(plan.Overwrites) > 0 && !importYes && !confirm("Replace existing notes?") {
			fmt.Println("Import aborted.")
			return
		}

		res, err := importer.Apply(ctx, svc, plan)
		if err != nil {
			fatal("Failed to import", err)
		}
		fmt.Printf("Imported %d notes.\n", res.Imported)
	},
}

// confirm asks a yes/no question on stdin; anything but y/yes is no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Backup format: "+strings.Join(backup.DefaultRegistry().Names(), ", "))
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: dated file name, - for stdout)")

	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Backup format (default: from the file extension)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and report without writing")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Replace existing notes without asking")
}
