package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active provider, model and label set",
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := GetAppFromContext(cmd.Context())
			if err != nil {
				return err
			}
			st := appInstance.Engine.Status()
			provider := appInstance.Provider.Name()
			w := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"provider": provider,
					"model":    st.Model,
					"labels":   st.Labels,
					"fallback": st.Fallback,
				})
			}
			fmt.Fprintf(w, "Provider: %s\n", provider)
			fmt.Fprintf(w, "Model:    %s\n", st.Model)
			fmt.Fprintf(w, "Labels:   %s\n", strings.Join(st.Labels, ", "))
			fmt.Fprintf(w, "Fallback: %s\n", st.Fallback)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	return cmd
}
