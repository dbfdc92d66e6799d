package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load builds a configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if err := applyDefaults(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := loadEnv(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyDefaults sets every field that has a default tag.
func applyDefaults(v reflect.Value) error {
	return walk(v, func(field reflect.StructField, fieldVal reflect.Value) error {
		def := field.Tag.Get("default")
		if def == "" {
			return nil
		}
		if err := setField(fieldVal, def); err != nil {
			return fmt.Errorf("invalid default for %s: %w", field.Name, err)
		}
		return nil
	})
}

// loadEnv overrides fields whose env variable is set and non-empty.
func loadEnv(v reflect.Value) error {
	return walk(v, func(field reflect.StructField, fieldVal reflect.Value) error {
		envName := field.Tag.Get("env")
		if envName == "" {
			return nil
		}
		value := os.Getenv(envName)
		if value == "" {
			return nil
		}
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
		return nil
	})
}

// walk calls fn for every settable leaf field, recursing into nested structs.
func walk(v reflect.Value, fn func(reflect.StructField, reflect.Value) error) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			if err := walk(fieldVal, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(field, fieldVal); err != nil {
			return err
		}
	}
	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(int64(i))
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}
