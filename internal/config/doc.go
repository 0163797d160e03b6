// Package config manages critic configuration with layered merging:
// built-in defaults, then the global config file, then the
// repository's .critic.yml overlay, then CRITIC_* environment
// variables, then CLI flag overrides.
package config
