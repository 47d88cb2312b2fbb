package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	showJSON bool
)

var saveCmd = &cobra.Command{
	Use:   "save [date] [content]",
	Short: "Write the note of a day",
	Long: `Replace the text of the note for date (YYYY-MM-DD). Use "-" as content to
read it from stdin. Attached images are kept. Saving blank text on a day
without images deletes the note.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		date, content := args[0], args[1]
		if content == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Failed to read stdin", err)
			}
			content = string(data)
		}

		ctx := context.Background()
		svc := openService(ctx)
		defer svc.Close()

		existing, _ := svc.GetNote(date)
		res, err := svc.SaveNote(ctx, date, content, existing.Images)
		reportSave(date, res, err)
	},
}

var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Print the note of a day",
	Long:  `Print the note text for date. With --json the whole stored record is printed.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(context.Background())
		defer svc.Close()

		note, ok := svc.GetNote(args[0])
		if !ok {
			fmt.Fprintf(os.Stderr, "No note for %s\n", args[0])
			os.Exit(1)
		}

		if showJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(note); err != nil {
				fatal("Failed to encode note", err)
			}
			return
		}

		if note.Emoji != "" {
			fmt.Printf("%s %s\n", note.Emoji, note.Date)
		}
		fmt.Println(note.Content)
		if len(note.Images) > 0 {
			fmt.Printf("(%d images)\n", len(note.Images))
		}
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [date]",
	Short: "Delete the note of a day",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc := openService(ctx)
		defer svc.Close()

		deleted, err := svc.DeleteNote(ctx, args[0])
		if err != nil {
			fatal("Failed to delete note", err)
		}
		if !deleted {
			fmt.Printf("%s: nothing to delete\n", args[0])
			return
		}
		fmt.Printf("%s: deleted\n", args[0])
	},
}

var emojiCmd = &cobra.Command{
	Use:   "emoji [date] [emoji]",
	Short: "Set the mood emoji of a day",
	Long:  `Set the emoji shown on the calendar cell. An empty string clears it.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc := openService(ctx)
		defer svc.Close()

		res, err := svc.SetEmoji(ctx, args[0], args[1])
		reportSave(args[0], res, err)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [date] [line]",
	Short: "Toggle the checklist item on a line",
	Long:  `Flip the ☐/☑ marker on the given 0-based line of the note.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		line, err := strconv.Atoi(args[1])
		if err != nil {
			fatal("Invalid line", err)
		}

		ctx := context.Background()
		svc := openService(ctx)
		defer svc.Close()

		res, err := svc.ToggleChecklist(ctx, args[0], line)
		reportSave(args[0], res, err)
	},
}

func init() {
	rootCmd.AddCommand(saveCmd, showCmd, deleteCmd, emojiCmd, checkCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output the stored record as JSON")
}
