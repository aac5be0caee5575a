package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

// ZencConfig represents configuration for the zenc tool
type ZencConfig struct {
	Debug    bool   `json:"debug" jsonschema:"title=Debug,description=Enable debug logging"`
	NoColor  bool   `json:"noColor" jsonschema:"title=No Color,description=Disable listing colorization"`
	LogLevel string `json:"logLevel" jsonschema:"title=Log Level,description=Level for the file logger (debug info warn error)"`
	LogFile  bool   `json:"logFile" jsonschema:"title=Log To File,description=Write logs to a timestamped file"`
}

var schemaCmd = &cobra.Command{
	Use:    "schema",
	Short:  "Generate JSON schema for configuration",
	Long:   "Generate JSON schema for the zenc configuration",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		reflector := new(jsonschema.Reflector)
		bts, err := json.MarshalIndent(reflector.Reflect(&ZencConfig{}), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		fmt.Println(string(bts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
