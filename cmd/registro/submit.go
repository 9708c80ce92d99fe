package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/registro/internal/submit"
	"github.com/registro/internal/terminal"
	"github.com/spf13/cobra"
)

var (
	fieldPairs []string
	required   []string
	attachment string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Validate and send one registration",
	Example: `  registro submit --endpoint https://script.google.com/macros/s/ID/exec \
    -f nombre=Ana -f email=ana@example.org --require nombre,email --archivo ./cv.pdf`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&cfg.EndpointURL, "endpoint", cfg.EndpointURL, "URL that receives registrations (env ENDPOINT_URL)")
	submitCmd.Flags().DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "timeout for the request (env REQUEST_TIMEOUT)")
	submitCmd.Flags().StringArrayVarP(&fieldPairs, "field", "f", nil, "form field as name=value (repeatable)")
	submitCmd.Flags().StringSliceVar(&required, "require", nil, "comma separated names of required fields")
	submitCmd.Flags().StringVar(&attachment, "archivo", "", "path of the optional file to attach")
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	form, err := terminal.ParseFields(fieldPairs, required)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s := submit.New(cfg.EndpointURL, form, terminal.NewNotifier(out),
		submit.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		submit.WithLogger(logger),
		submit.WithFileInput(terminal.PathFile(attachment)),
	)

	if _, err := s.Submit(cmd.Context()); err != nil {
		if errors.Is(err, submit.ErrIncomplete) && form.Validated {
			fmt.Fprintf(cmd.ErrOrStderr(), "missing: %s\n", strings.Join(form.Missing(), ", "))
		}
		return err
	}
	return nil
}
