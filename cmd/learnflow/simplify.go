package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify",
	Short: "Simplify text, a document or a video transcript and quiz it",
	Example: `  learnflow simplify --text "Photosynthesis converts light energy..."
  learnflow simplify --file lecture.pdf
  learnflow simplify --video https://youtu.be/dQw4w9WgXcQ`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		video, _ := cmd.Flags().GetString("video")

		if err := exactlyOne(text, file, video); err != nil {
			return err
		}

		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := commandContext(cmd)
		content := strings.TrimSpace(text)
		switch {
		case file != "":
			content, err = a.Extractor.ExtractText(ctx, file, filepath.Base(file))
		case video != "":
			content, err = a.VideoText(ctx, video)
		}
		if err != nil {
			return err
		}

		result, err := a.Content.SimplifyAndQuiz(ctx, content)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	simplifyCmd.Flags().String("text", "", "Raw text to simplify")
	simplifyCmd.Flags().String("file", "", "Path to a .pdf, .docx or .txt file")
	simplifyCmd.Flags().String("video", "", "YouTube link or video ID")
}

func exactlyOne(values ...string) error {
	n := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	if n != 1 {
		return errors.New("exactly one of --text, --file or --video is required")
	}
	return nil
}
