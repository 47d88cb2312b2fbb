package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Attach or remove images",
}

var imageAddCmd = &cobra.Command{
	Use:   "add [date] [file]",
	Short: "Attach an image file to a day",
	Long:  `Read the file and attach it to the note as a base64 data URL, creating the note when needed.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[1])
		if err != nil {
			fatal("Failed to read image", err)
		}

		ctx := context.Background()
		svc := openService(ctx)
		defer svc.Close()

		res, err := svc.AddImage(ctx, args[0], dataURL(data))
		reportSave(args[0], res, err)
	},
}

var imageRemoveCmd = &cobra.Command{
	Use:   "rm [date] [index]",
	Short: "Remove the image at a 0-based index",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			fatal("Invalid index", err)
		}

		ctx := context.Background()
		svc := openService(ctx)
		defer svc.Close()

		res, err := svc.DeleteImage(ctx, args[0], index)
		reportSave(args[0], res, err)
	},
}

func dataURL(data []byte) string {
	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func init() {
	rootCmd.AddCommand(imageCmd)
	imageCmd.AddCommand(imageAddCmd, imageRemoveCmd)
}
