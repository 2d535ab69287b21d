// Package deploy publishes user data functions to a workspace REST API.
//
// A deployment looks the function item up by display name, creates it when it is
// missing, then posts the function definition as a base64 InlineBase64 part to the
// item's updateDefinition endpoint. A 202 Accepted answer counts as success; the
// workspace applies the definition asynchronously.
package deploy
