package cmd

import (
	"fmt"
	"os"

	"lakehouse-utils/feature/deploy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var deployFlags struct {
	source      string
	itemName    string
	description string
	out         string
	dryRun      bool
}

// deployCmd publishes the function source to the workspace.
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Publish the user data function to the workspace",
	Long: `Find or create the function item in the workspace and upload the source file
as its definition. The token is read from DEPLOY_TOKEN or config.yaml only.

Examples:
  deploy --source src/udf_source.py --item lakehouse_utils
  deploy --dry-run --out definition.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadRuntime()
		if err != nil {
			return err
		}
		defer l.Sync()

		dc := cfg.Deploy
		if deployFlags.source != "" {
			dc.SourcePath = deployFlags.source
		}
		if deployFlags.itemName != "" {
			dc.ItemName = deployFlags.itemName
		}

		def, err := deploy.LoadDefinition(dc.SourcePath)
		if err != nil {
			return err
		}

		if deployFlags.out != "" {
			if err := deploy.WriteJSON(deployFlags.out, def); err != nil {
				return err
			}
			l.Info("Definition written", zap.String("path", deployFlags.out))
		}

		if deployFlags.dryRun {
			l.Info("Dry-run mode: definition not uploaded.", zap.String("main_file", def.Properties.MainFile))
			return nil
		}

		client, err := deploy.NewClient(dc, nil, l)
		if err != nil {
			return err
		}

		id, err := client.Deploy(cmd.Context(), def)
		if err != nil {
			return fmt.Errorf("deploy failed: %w", err)
		}
		l.Info("Function deployed", zap.String("item_id", id), zap.String("item", dc.ItemName))
		return nil
	},
}

// payloadCmd writes the function payload next to the sources.
var payloadCmd = &cobra.Command{
	Use:   "payload",
	Short: "Write the function payload JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadRuntime()
		if err != nil {
			return err
		}
		defer l.Sync()

		dc := cfg.Deploy
		if deployFlags.source != "" {
			dc.SourcePath = deployFlags.source
		}
		name := deployFlags.itemName
		if name == "" {
			name = dc.ItemName
		}
		description := deployFlags.description
		if description == "" {
			description = dc.Description
		}

		source, err := os.ReadFile(dc.SourcePath)
		if err != nil {
			return fmt.Errorf("failed to read source file: %w", err)
		}

		out := deployFlags.out
		if out == "" {
			out = "udf_payload.json"
		}
		if err := deploy.WriteJSON(out, deploy.BuildPayload(name, description, string(source))); err != nil {
			return err
		}
		l.Info("Payload written", zap.String("path", out))
		return nil
	},
}

func init() {
	f := deployCmd.PersistentFlags()
	f.StringVar(&deployFlags.source, "source", "", "Function source file (defaults to deploy.source_path)")
	f.StringVar(&deployFlags.itemName, "item", "", "Function item name (defaults to deploy.item_name)")
	f.StringVar(&deployFlags.out, "out", "", "Also write the JSON document to this file")
	deployCmd.Flags().BoolVar(&deployFlags.dryRun, "dry-run", false, "Build the definition without uploading it")
	payloadCmd.Flags().StringVar(&deployFlags.description, "description", "", "Function description (defaults to deploy.description)")

	deployCmd.AddCommand(payloadCmd)
	RootCmd.AddCommand(deployCmd)
}
