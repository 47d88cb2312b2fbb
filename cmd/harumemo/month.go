package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	monthJSON bool
)

var monthCmd = &cobra.Command{
	Use:   "month [year] [month]",
	Short: "List the days of a month that hold a note",
	Long:  `List the notes of a month (1-12) with their emoji, image count and a short preview.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		year, err := strconv.Atoi(args[0])
		if err != nil {
			fatal("Invalid year", err)
		}
		month, err := strconv.Atoi(args[1])
		if err != nil || month < 1 || month > 12 {
			fatal("Invalid month", fmt.Errorf("%q is not between 1 and 12", args[1]))
		}

		svc := openService(context.Background())
		defer svc.Close()

		days := svc.MonthSummary(year, month-1)

		if monthJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(days); err != nil {
				fatal("Failed to encode month", err)
			}
			return
		}

		if len(days) == 0 {
			fmt.Println("No notes this month.")
			return
		}
		for _, d := range days {
			emoji := d.Emoji
			if emoji == "" {
				emoji = "  "
			}
			line := fmt.Sprintf("%s %s %s", d.Date, emoji, d.Preview)
			if d.Checklist > 0 {
				line += fmt.Sprintf(" [%d/%d]", d.Checked, d.Checklist)
			}
			if d.Images > 0 {
				line += fmt.Sprintf(" (+%d img)", d.Images)
			}
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(monthCmd)
	monthCmd.Flags().BoolVar(&monthJSON, "json", false, "Output as JSON")
}
