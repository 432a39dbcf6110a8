// Package registry holds the static-at-boot catalog of available apps.
//
// Built-in apps register their descriptors in code; optional TOML
// manifests in a directory can relabel or disable them. Menu display
// order is registration order and stays stable for the process
// lifetime.
package registry
