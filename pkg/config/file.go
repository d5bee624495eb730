package config

import (
	"errors"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// LoadFile populates v in three layers of increasing precedence: `envDefault`
// tag values, then the YAML file, then environment variables actually present
// in the process environment. The result is not cached; callers that want
// caching should use Load for env-only configuration.
//
// A missing file is not an error: the struct is populated from defaults and
// the environment alone. This lets an optional config file path be passed
// unconditionally.
func LoadFile[T any](path string, v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	// Materialize envDefault values first so the file layer can override
	// them. The empty environment keeps real env vars out of this pass.
	if err := env.ParseWithOptions(v, env.Options{Environment: map[string]string{}}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, v); err != nil {
			return errors.Join(ErrReadingFile, err)
		}
	case os.IsNotExist(err):
		// optional file
	default:
		return errors.Join(ErrReadingFile, err)
	}

	// Last pass applies only variables the environment actually carries.
	// Defaults are redirected to a tag no field uses; otherwise env.Parse
	// would re-apply them over every file value whose variable is unset.
	if err := env.ParseWithOptions(v, env.Options{DefaultValueTagName: "envFileDefault"}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}
