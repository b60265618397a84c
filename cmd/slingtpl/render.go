package main

import (
	"bytes"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-slingtpl/pkg/sling"
)

func newRenderCmd(root *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "render <path>",
		Short: "Render one request path, e.g. /content/page.html",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), root.logLevel)
			if err != nil {
				return err
			}
			h, stop, err := buildHost(root, logger)
			if err != nil {
				return err
			}
			defer stop()

			capture := sling.NewCaptureResponse(nil)
			if err := h.Render(cmd.Context(), args[0], capture); err != nil {
				return fmt.Errorf("render %s: %w", args[0], err)
			}
			body := capture.CapturedBytes()
			if !capture.IsBinary() {
				text, _ := capture.CapturedText()
				body = []byte(text)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			if err := atomic.WriteFile(output, bytes.NewReader(body)); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "rendered %s to %s\n", args[0], output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
