// Package driving holds the inbound ports: what the HTTP API, the CLI and the
// MCP server call on the core. internal/core/services implements them.
package driving
