package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cliffyan/go-tavily-search-mcp/internal/config"
)

func (a *app) envCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Environment variable helpers",
	}

	var output string
	template := &cobra.Command{
		Use:   "template",
		Short: "Print a .env template with every supported variable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return config.WriteEnvTemplate(cmd.OutOrStdout())
			}
			f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := config.WriteEnvTemplate(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s\n", output)
			return nil
		},
	}
	template.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout (refuses to overwrite)")

	check := &cobra.Command{
		Use:   "check",
		Short: "Verify that the required variables are set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			envErr := config.CheckRequired()
			if envErr == nil {
				fmt.Fprintln(out, "✅ All required environment variables are set")
				return nil
			}

			// 环境变量缺失时，配置文件里的 tavily.api_key 同样可用
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cfg.RequireAPIKey() == nil {
				fmt.Fprintf(out, "✅ %s is not set, using tavily.api_key from the config file\n", config.EnvAPIKey)
				return nil
			}

			fmt.Fprintf(out, "❌ %v\n", envErr)
			fmt.Fprintf(out, "💡 export %s=your_api_key_here or set tavily.api_key in config.yaml\n", config.EnvAPIKey)
			return envErr
		},
	}

	cmd.AddCommand(template, check)
	return cmd
}
