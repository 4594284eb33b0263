// Package config loads the library configuration from defaults, a YAML
// file, and FINETUNE_-prefixed environment variables, in that priority
// order.
package config
