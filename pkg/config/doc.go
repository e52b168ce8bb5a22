// Package config holds the YAML configuration shared by the blueprint CLI.
//
// # Usage
//
//	cfg, err := config.LoadFile("blueprint.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// LoadFile starts from NewDefaultConfig, so a file only needs the keys it
// changes.
//
// ## Environment Variable Substitution
//
//	# blueprint.yaml
//	encoder:
//	  component_type: ${BLUEPRINT_COMPONENT_TYPE}
//	output:
//	  format: ipc
//	  ipc_compression: zstd
//	observability:
//	  log_level: ${BLUEPRINT_LOG_LEVEL}
//
// An unset variable substitutes the empty string, which Validate then
// reports for required fields.
package config
