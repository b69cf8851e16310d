package config

import (
	"strings"

	"github.com/0xalexb/hjarta-conf/config/env"
)

// FromEnv reads every non skipped field from provider.
//
// The key of a field is its env template with the container prefix
// substituted for "{}". The container prefix is the struct's env_prefix
// template with prefix substituted, and a nested schema uses the key of its
// field, with a trailing '_' added, as the prefix of its own fields:
//
//	type Conf struct {
//	    _  struct{} `config:"env_prefix={}CONF_"`
//	    DB DB
//	}
//
// With prefix "MY_APP_" the field DB.Port is read from MY_APP_CONF_DB_PORT.
// Unset variables leave fields absent; values that fail to parse are a
// *ParseError.
func (s *Schema[T]) FromEnv(provider env.Provider, prefix string) (*Partial[T], error) {
	if provider == nil {
		provider = env.OS{}
	}

	p := s.Empty()

	err := p.root.fromEnv(provider, prefix)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (n *node) fromEnv(provider env.Provider, prefix string) error {
	containerPrefix := expandPrefix(n.info.envPrefix, prefix)

	for i, field := range n.info.fields {
		if field.skipEnv {
			continue
		}

		key := expandPrefix(field.envKey, containerPrefix)

		if field.nested != nil {
			nestedPrefix := key
			if nestedPrefix != "" && !strings.HasSuffix(nestedPrefix, "_") {
				nestedPrefix += "_"
			}

			err := n.slots[i].nested.fromEnv(provider, nestedPrefix)
			if err != nil {
				return err
			}

			continue
		}

		raw, found, err := provider.Lookup(key)
		if err != nil {
			return &ParseError{Field: field.path, Key: key, Value: "", Err: err}
		}

		if !found {
			continue
		}

		value, err := field.parse(raw)
		if err != nil {
			return &ParseError{Field: field.path, Key: key, Value: raw, Err: err}
		}

		n.slots[i] = slot{present: true, value: value, nested: nil}
	}

	return nil
}

// EnvKeys lists the environment variables FromEnv would read for prefix,
// keyed by field path.
func (s *Schema[T]) EnvKeys(prefix string) map[string]string {
	out := map[string]string{}
	s.root.envKeys(prefix, out)

	return out
}

func (s *structInfo) envKeys(prefix string, out map[string]string) {
	containerPrefix := expandPrefix(s.envPrefix, prefix)

	for _, field := range s.fields {
		if field.skipEnv {
			continue
		}

		key := expandPrefix(field.envKey, containerPrefix)

		if field.nested != nil {
			if key != "" && !strings.HasSuffix(key, "_") {
				key += "_"
			}

			field.nested.envKeys(key, out)

			continue
		}

		out[field.path] = key
	}
}

func expandPrefix(template, prefix string) string {
	return strings.Replace(template, prefixPlaceholder, prefix, 1)
}
