/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config loads and validates the server's configuration file
// with spf13/viper, decodes it into a typed Config with
// mitchellh/mapstructure (including custom hooks for the duration and
// byte-size types), validates it with go-playground/validator, and can
// watch the file for changes with fsnotify.
package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	liberr "github.com/nabbar/staticd/internal/errors"

	"github.com/nabbar/staticd/internal/bsize"
	"github.com/nabbar/staticd/internal/duration"
)

// Config is the full, validated server configuration for one worker
// fleet. Master and worker processes both load the same file.
type Config struct {
	Listen           string            `mapstructure:"listen" validate:"required"`
	MetricsListen    string            `mapstructure:"metrics_listen"`
	Workers          int               `mapstructure:"workers" validate:"min=1"`
	DocumentRoot     string            `mapstructure:"document_root" validate:"required"`
	LogFile          string            `mapstructure:"log_file"`
	Development      bool              `mapstructure:"development"`
	KeepAliveTimeout duration.Duration `mapstructure:"keep_alive_timeout"`
	CacheTableSize   int               `mapstructure:"cache_table_size" validate:"min=0"`
	CacheTTL         duration.Duration `mapstructure:"cache_ttl"`
	RateLimitTable   int               `mapstructure:"rate_limit_table_size" validate:"min=0"`
	BufferPoolCount  int               `mapstructure:"buffer_pool_count" validate:"min=1"`
	BufferSize       bsize.Size        `mapstructure:"buffer_size"`
}

// Default returns the baseline configuration applied before the file's
// own values are decoded over it.
func Default() *Config {
	return &Config{
		Listen:           ":8080",
		Workers:          1,
		DocumentRoot:     ".",
		Development:      false,
		KeepAliveTimeout: duration.Seconds(60),
		CacheTableSize:   10000,
		CacheTTL:         duration.Seconds(3600),
		RateLimitTable:   4096,
		BufferPoolCount:  1024,
		BufferSize:       8 * bsize.KiB,
	}
}

// Load reads path with viper, decodes it over Default(), and validates
// the result.
func Load(path string) (*Config, liberr.Error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml") // the conventional ".conf" extension isn't one viper infers a format from

	if err := v.ReadInConfig(); err != nil {
		return nil, ErrorConfigRead.Error(liberr.New(0, err.Error()))
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, liberr.Error) {
	cfg := Default()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return nil, ErrorConfigDecode.Error(liberr.New(0, err.Error()))
	}

	if err = dec.Decode(v.AllSettings()); err != nil {
		return nil, ErrorConfigDecode.Error(liberr.New(0, err.Error()))
	}

	if err = validator.New().Struct(cfg); err != nil {
		return nil, ErrorConfigValidate.Error(liberr.New(0, err.Error()))
	}

	return cfg, nil
}
