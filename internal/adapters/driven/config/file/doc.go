// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.docqa.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt files with embedded defaults
//   - PromptWatcher: fsnotify-driven prompt reload for long-running servers
package file
