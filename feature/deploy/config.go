package deploy

// Config holds the settings for publishing a user data function.
type Config struct {
	// BaseURL is the root of the workspace REST API.
	BaseURL string `mapstructure:"base_url" default:"https://api.fabric.microsoft.com/v1"`
	// WorkspaceID identifies the workspace owning the function item.
	WorkspaceID string `mapstructure:"workspace_id" default:""`
	// Token is the bearer token sent with every request.
	Token string `mapstructure:"token" default:""`
	// ItemName is the display name of the function item.
	ItemName string `mapstructure:"item_name" default:""`
	// Description is attached to the built payload.
	Description string `mapstructure:"description" default:""`
	// SourcePath is the function source file to publish.
	SourcePath string `mapstructure:"source_path" default:"src/udf_source.py"`
	// TimeoutSeconds bounds every API call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
