// Package config loads the recognized Night Eye spell and effect
// identifier sets.
//
// The on-disk format is the host-conventional INI file:
//
//	[general]
//	VampireSight = 0x000A1B2C
//
//	[magiceffects]
//	NightEyeEffect       = 0x000B0001
//	NightEyeDispelEffect = 0x000B0002
//
// Keys under [general] name spells; keys under [magiceffects] name
// effects, classified as dispel effects when the key name contains
// "dispel" (case-insensitive), else as apply effects. Key names are
// otherwise arbitrary labels.
//
// A missing file is not an error: the tracker simply never matches
// anything and every event is a no-op.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/bainos/nighteye/internal/game"
)

// Config holds the three identifier sets, read-only after loading.
type Config struct {
	Spells        game.FormSet
	ApplyEffects  game.FormSet
	DispelEffects game.FormSet
}

// New returns an empty configuration.
func New() *Config {
	return &Config{
		Spells:        game.NewFormSet(),
		ApplyEffects:  game.NewFormSet(),
		DispelEffects: game.NewFormSet(),
	}
}

// Load reads the INI file at path. Malformed entries are logged and
// skipped; a missing file logs a warning and returns an empty config.
func Load(path string) *Config {
	cfg := New()

	if _, err := os.Stat(path); err != nil {
		slog.Warn("config file not found, tracker will be inert", "path", path)
		return cfg
	}

	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		slog.Warn("config file unreadable, tracker will be inert",
			"path", path, "error", err)
		return cfg
	}

	slog.Info("loading config", "path", path)
	cfg.loadSpells(f)
	cfg.loadEffects(f)

	if cfg.Spells.Len() == 0 {
		slog.Warn("no valid night eye spells configured, tracker will be inert")
	}
	return cfg
}

// Check strictly validates the INI file at path and returns one message
// per problem found. Unlike Load, a missing file, a malformed entry, and
// an empty spell section are all reported instead of skipped.
func Check(path string) []string {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return []string{fmt.Sprintf("load config: %v", err)}
	}

	var problems []string
	spells := 0
	for _, name := range []string{"general", "magiceffects"} {
		sec, err := f.GetSection(name)
		if err != nil {
			continue
		}
		for _, key := range sec.Keys() {
			if _, err := game.ParseFormID(key.String()); err != nil {
				problems = append(problems,
					fmt.Sprintf("[%s] %s = %q: %v", name, key.Name(), key.String(), err))
			} else if name == "general" {
				spells++
			}
		}
	}
	if spells == 0 {
		problems = append(problems, "no valid spells under [general]")
	}
	return problems
}

func (c *Config) loadSpells(f *ini.File) {
	sec, err := f.GetSection("general")
	if err != nil {
		return
	}
	for _, key := range sec.Keys() {
		id, err := game.ParseFormID(key.String())
		if err != nil {
			slog.Warn("skipping malformed spell entry",
				"key", key.Name(), "value", key.String(), "error", err)
			continue
		}
		c.Spells.Add(id)
		slog.Info("configured spell", "name", key.Name(), "form_id", id.String())
	}
}

func (c *Config) loadEffects(f *ini.File) {
	sec, err := f.GetSection("magiceffects")
	if err != nil {
		return
	}
	for _, key := range sec.Keys() {
		id, err := game.ParseFormID(key.String())
		if err != nil {
			slog.Warn("skipping malformed effect entry",
				"key", key.Name(), "value", key.String(), "error", err)
			continue
		}
		if strings.Contains(strings.ToLower(key.Name()), "dispel") {
			c.DispelEffects.Add(id)
			slog.Info("configured effect", "name", key.Name(), "kind", "dispel", "form_id", id.String())
		} else {
			c.ApplyEffects.Add(id)
			slog.Info("configured effect", "name", key.Name(), "kind", "apply", "form_id", id.String())
		}
	}
}

// AutoDiscover derives the apply-effect set from the configured spells'
// effect lists.
//
// Discovery only runs when BOTH effect sets are empty: a manual effect
// configuration, even a partial one, is taken as authoritative and never
// merged with discovered values. Spell lookup misses are logged and
// skipped.
func (c *Config) AutoDiscover(world game.World) {
	if c.ApplyEffects.Len() > 0 || c.DispelEffects.Len() > 0 {
		slog.Info("manual effect configuration present, skipping auto-discovery")
		return
	}

	discovered := game.NewFormSet()
	for _, spellID := range c.Spells.IDs() {
		spell, ok := world.LookupSpell(spellID)
		if !ok {
			slog.Warn("spell lookup failed during auto-discovery", "form_id", spellID.String())
			continue
		}
		slog.Info("discovering effects from spell",
			"form_id", spellID.String(), "effects", len(spell.Effects))
		for _, eff := range spell.Effects {
			discovered.Add(eff)
		}
	}

	if discovered.Len() == 0 {
		slog.Warn("no effects discovered from configured spells")
		return
	}

	c.ApplyEffects = discovered
	slog.Info("auto-discovered night eye effects", "count", discovered.Len())
}
