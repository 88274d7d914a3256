package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/frahmantamala/resource-dashboard/internal/transport/rest"
	"github.com/spf13/cobra"
)

var (
	openMethod string
	openData   string
)

var openCmd = &cobra.Command{
	Use:   "open PATH",
	Short: "Navigate to a dashboard view and print it",
	Long: `Dispatch PATH through the same routes the HTTP server uses, following
redirects issued by the access guard. Example: open /projects?status=active`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		var body []byte
		if openData != "" {
			if !json.Valid([]byte(openData)) {
				return fmt.Errorf("--data is not valid JSON")
			}
			body = []byte(openData)
		}

		page, err := rest.Navigate(cmd.Context(), deps.Router, strings.ToUpper(openMethod), args[0], body)
		if err != nil {
			return err
		}
		for _, hop := range page.Hops {
			fmt.Fprintf(cmd.ErrOrStderr(), "redirected to %s\n", hop)
		}

		var out bytes.Buffer
		if json.Indent(&out, page.Body, "", "  ") != nil {
			out.Reset()
			out.Write(page.Body)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out.String(), "\n"))

		if page.Status >= http.StatusBadRequest {
			return fmt.Errorf("%s %s: %d %s", strings.ToUpper(openMethod), page.Path, page.Status, http.StatusText(page.Status))
		}
		return nil
	},
}

func init() {
	openCmd.Flags().StringVarP(&openMethod, "method", "X", http.MethodGet, "request method")
	openCmd.Flags().StringVarP(&openData, "data", "d", "", "JSON request body")
}
