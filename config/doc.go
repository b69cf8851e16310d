// Package config accumulates typed configuration from layered sources.
//
// A schema is an ordinary Go struct. NewSchema derives a field metadata table
// from it once, by reflection, and every source is turned into a deep-partial
// value of that schema: a Partial where each leaf is either present or absent
// and nested structs are partial themselves. A Loader merges partials in the
// order sources are added and Finish converts the result into the struct, or
// reports every required field that no source provided.
//
//	type Config struct {
//	    Port     uint16 `default:"8000"`
//	    Database struct {
//	        Host string
//	        User string `env:"{}USERNAME"`
//	    }
//	    Tags []string
//	}
//
//	loader, err := config.NewLoader[Config](
//	    config.WithSchemaOptions(config.WithMerge("tags", merge.Append[string])),
//	)
//	_ = loader.Defaults()
//	_ = loader.FileOptional("config.toml", config.FormatTOML)
//	_ = loader.EnvWithPrefix("MY_APP_")
//	cfg, err := loader.Finish()
//
// # Field declaration
//
// Canonical field names default to the snake_case form of the Go field name
// and are used for document keys, flag names and every reported path:
//
//	`config:"name"`              rename the field
//	`config:"-"`                 exclude the field
//	`config:",optional"`         absent leaves finalize to the zero value
//	`config:",nested"`           assert the field is a nested schema
//	`config:",flatten"`          merge the struct's fields into the parent
//	`config:",skip_env"`         never read from the environment (same as `env:"-"`)
//	`env:"{}PORT"`               environment key; {} is the inherited prefix
//	`default:"8000"`             default literal, parsed like an env value
//
// Embedded structs are flattened unless renamed: their keys sit at the parent
// level and their env keys use the parent's prefix.
//
// Pointer leaves and pointer nested schemas are optional. Struct-level options
// are declared on a blank marker field:
//
//	_ struct{} `config:"rename_all=camelCase,env_prefix={}APP_,allow_unknown_fields"`
//
// # Merging
//
// By default a present incoming leaf replaces the accumulated one. WithMerge
// installs a custom strategy for a single leaf; see the merge sub-package.
//
// # Errors
//
// Source failures are *SourceError, string parsing failures *ParseError,
// custom merge failures *MergeError and incomplete configurations
// *MissingFieldsError. All of them unwrap to their cause.
package config
