// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package config

import (
	"os"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/trim21/errgo"
)

type Bench struct {
	// word size of the values, 16 or 24
	Class   int  `toml:"class" validate:"oneof=16 24"`
	Intern  bool `toml:"intern"`
	Workers int  `toml:"workers" validate:"min=1"`
	// number of repeated keys listed in the report
	TopK int `toml:"top-k" validate:"min=0"`
}

type Metrics struct {
	// listen address of the prometheus endpoint, empty to disable it
	Listen string `toml:"listen" validate:"omitempty,hostname_port"`
}

type Config struct {
	Bench   Bench   `toml:"bench"`
	Metrics Metrics `toml:"metrics"`
}

func Default() Config {
	return Config{
		Bench: Bench{Class: 16, Workers: runtime.GOMAXPROCS(0), TopK: 10},
	}
}

// LoadFromFile reads a TOML config on top of Default. An empty path or a
// missing file is not an error.
func LoadFromFile(path string) (Config, error) {
	var cfg = Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return Config{}, errgo.Wrap(err, "failed to read config file")
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errgo.Wrap(err, "failed to parse config file")
	}

	return cfg, cfg.Validate()
}

var validate = newValidator()

// errors name fields by their toml keys, for example bench.class.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errgo.Wrap(err, "invalid config")
	}

	return nil
}
