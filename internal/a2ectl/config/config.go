// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

// Package config loads the optional a2e.yaml tool configuration. A missing
// file is not an error and yields a zero config, so every accessor returns a
// usable default.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/retry"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/validator"
)

// A2EConfig is the shape of a2e.yaml.
type A2EConfig struct {
	Retry struct {
		MaxRetries    int     `mapstructure:"max_retries"`
		BaseDelayMs   int     `mapstructure:"base_delay_ms"`
		MaxDelayMs    int     `mapstructure:"max_delay_ms"`
		BackoffFactor float64 `mapstructure:"backoff_factor"`
	} `mapstructure:"retry"`
	Limits struct {
		MaxOperations int `mapstructure:"max_operations"`
		MaxDepth      int `mapstructure:"max_depth"`
		MaxConditions int `mapstructure:"max_conditions"`
	} `mapstructure:"limits"`
	Registry struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"registry"`
}

// GetConfig reads a2e.yaml from the working directory or ~/.a2e. A missing
// file yields the zero config; a malformed one is an error.
func GetConfig() (*A2EConfig, error) {
	v := viper.New()
	v.SetConfigName("a2e")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.a2e")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	}

	cfg := &A2EConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}
	return cfg, nil
}

// RetryPolicy maps the retry section onto a policy. An untouched section
// keeps the package default.
func (c *A2EConfig) RetryPolicy() retry.Policy {
	r := c.Retry
	if r.MaxRetries == 0 && r.BaseDelayMs == 0 && r.MaxDelayMs == 0 && r.BackoffFactor == 0 {
		return retry.DefaultPolicy
	}
	p := retry.DefaultPolicy
	if r.MaxRetries > 0 {
		p.MaxRetries = r.MaxRetries
	}
	if r.BaseDelayMs > 0 {
		p.BaseDelay = time.Duration(r.BaseDelayMs) * time.Millisecond
	}
	if r.MaxDelayMs > 0 {
		p.MaxDelay = time.Duration(r.MaxDelayMs) * time.Millisecond
	}
	if r.BackoffFactor > 0 {
		p.BackoffFactor = r.BackoffFactor
	}
	return p
}

// ValidatorLimits maps the limits section onto validator ceilings. Zero
// fields leave the corresponding check disabled.
func (c *A2EConfig) ValidatorLimits() validator.Limits {
	return validator.Limits{
		MaxOperations: c.Limits.MaxOperations,
		MaxDepth:      c.Limits.MaxDepth,
		MaxConditions: c.Limits.MaxConditions,
	}
}

// RegistryDir returns the configured registry directory, empty for the
// default location under the user home.
func (c *A2EConfig) RegistryDir() string {
	return c.Registry.Dir
}
