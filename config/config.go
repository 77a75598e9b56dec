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

// Package config is the viper/validator configuration surface for one GMR
// instance: mapstructure-tagged fields for loading, struct-tag validation,
// and Validate/Clone/Merge methods.
package config

import (
	"fmt"
	"time"

	libval "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	liberr "github.com/sabouaram/garpd/errors"
	"github.com/sabouaram/garpd/fdb"
	"github.com/sabouaram/garpd/gid"
	"github.com/sabouaram/garpd/gmr"
	"github.com/sabouaram/garpd/logger"
	loglvl "github.com/sabouaram/garpd/logger/level"
	"github.com/sabouaram/garpd/platform"
)

// Config is the configuration surface for one GMR instance: the VLAN
// context, the GMD table sizing, the outgoing-PDU record cap, the four GID
// timer durations, and the logger severity threshold.
type Config struct {
	// VlanID provides the context for this instance of GMR; 0 refers to
	// the base LAN.
	VlanID uint16 `mapstructure:"vlan_id" json:"vlan_id" yaml:"vlan_id" toml:"vlan_id"`

	// MaxMulticasts bounds the GMD table.
	MaxMulticasts int `mapstructure:"max_multicasts" json:"max_multicasts" yaml:"max_multicasts" toml:"max_multicasts" validate:"gt=0"`

	// MaxPduRecords bounds how many messages gmf packs into one outgoing
	// PDU before gmr.Instance.Transmit calls Untx and flushes what it has.
	MaxPduRecords int `mapstructure:"max_pdu_records" json:"max_pdu_records" yaml:"max_pdu_records" toml:"max_pdu_records" validate:"gt=0"`

	JoinTimeout         time.Duration `mapstructure:"join_timeout" json:"join_timeout" yaml:"join_timeout" toml:"join_timeout" validate:"gt=0"`
	LeaveStepTimeout    time.Duration `mapstructure:"leave_step_timeout" json:"leave_step_timeout" yaml:"leave_step_timeout" toml:"leave_step_timeout" validate:"gt=0"`
	HoldTimeout         time.Duration `mapstructure:"hold_timeout" json:"hold_timeout" yaml:"hold_timeout" toml:"hold_timeout" validate:"gt=0"`
	LeaveallStepTimeout time.Duration `mapstructure:"leaveall_step_timeout" json:"leaveall_step_timeout" yaml:"leaveall_step_timeout" toml:"leaveall_step_timeout" validate:"gt=0"`

	// LogLevel is parsed with logger/level.Parse; an empty or unrecognized
	// value resolves to Info.
	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Default returns the Config carrying gmr.DefaultMaxMulticasts and
// gid.DefaultTimers(). MaxPduRecords defaults to 50, a conservative,
// clearly-bounded starting point.
func Default() Config {
	t := gid.DefaultTimers()
	return Config{
		MaxMulticasts:       gmr.DefaultMaxMulticasts,
		MaxPduRecords:       50,
		JoinTimeout:         t.JoinTimeout,
		LeaveStepTimeout:    t.LeaveStepTimeout,
		HoldTimeout:         t.HoldTimeout,
		LeaveallStepTimeout: t.LeaveallStepTimeout,
		LogLevel:            "info",
	}
}

// Load reads Config from v (a fresh viper.Viper when v is nil), seeded
// with Default() for every key absent from v's sources, then validates
// the result.
func Load(v *viper.Viper) (*Config, liberr.Error) {
	if v == nil {
		v = viper.New()
	}

	c := Default()
	for key, val := range c.defaults() {
		v.SetDefault(key, val)
	}

	if err := v.Unmarshal(&c); err != nil {
		return nil, ErrorLoadError.Error(err)
	}

	if e := c.Validate(); e != nil {
		return nil, e
	}
	return &c, nil
}

func (c *Config) defaults() map[string]interface{} {
	return map[string]interface{}{
		"vlan_id":               c.VlanID,
		"max_multicasts":        c.MaxMulticasts,
		"max_pdu_records":       c.MaxPduRecords,
		"join_timeout":          c.JoinTimeout,
		"leave_step_timeout":    c.LeaveStepTimeout,
		"hold_timeout":          c.HoldTimeout,
		"leaveall_step_timeout": c.LeaveallStepTimeout,
		"log_level":             c.LogLevel,
	}
}

// Validate checks every struct-tag constraint via go-playground/validator:
// wrap the package's own ErrorValidatorError, append one parent error per
// failed field, collapse to nil when nothing failed.
func (c *Config) Validate() liberr.Error {
	e := ErrorValidatorError.Error(nil)

	if err := libval.New().Struct(c); err != nil {
		if er, ok := err.(*libval.InvalidValidationError); ok {
			e.Add(er)
		}
		for _, er := range err.(libval.ValidationErrors) {
			e.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", er.Namespace(), er.ActualTag()))
		}
	}

	if !e.HasParent() {
		return nil
	}
	return e
}

// Clone returns an independent copy. Every field is a value type, so this
// is a plain copy, kept as an explicit method for symmetry with Merge.
func (c Config) Clone() Config {
	return c
}

// Merge overwrites every non-zero field of other into c — override what
// was explicitly set, keep the rest.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.VlanID != 0 {
		c.VlanID = other.VlanID
	}
	if other.MaxMulticasts != 0 {
		c.MaxMulticasts = other.MaxMulticasts
	}
	if other.MaxPduRecords != 0 {
		c.MaxPduRecords = other.MaxPduRecords
	}
	if other.JoinTimeout != 0 {
		c.JoinTimeout = other.JoinTimeout
	}
	if other.LeaveStepTimeout != 0 {
		c.LeaveStepTimeout = other.LeaveStepTimeout
	}
	if other.HoldTimeout != 0 {
		c.HoldTimeout = other.HoldTimeout
	}
	if other.LeaveallStepTimeout != 0 {
		c.LeaveallStepTimeout = other.LeaveallStepTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// Timers converts the four validated durations into gid.Timers.
func (c *Config) Timers() gid.Timers {
	return gid.Timers{
		JoinTimeout:         c.JoinTimeout,
		LeaveStepTimeout:    c.LeaveStepTimeout,
		HoldTimeout:         c.HoldTimeout,
		LeaveallStepTimeout: c.LeaveallStepTimeout,
	}
}

// NewInstance builds the Logger (at this Config's LogLevel) and the GMR
// Instance wired per this Config, ready for ports to be created and
// connected by the caller.
func (c *Config) NewInstance(fdbDB fdb.Database, transport gmr.Transport, svc platform.Services) *gmr.Instance {
	log := logger.New(nil)
	log.SetLevel(loglvl.Parse(c.LogLevel))

	return gmr.New(c.VlanID, c.MaxMulticasts, c.MaxPduRecords, fdbDB, transport, log, svc, c.Timers())
}
