// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package store persists small namespaced preferences (calibration, OSC
// destination) in a YAML file. Every write rewrites the whole file through a
// temp file and rename, so a power cut leaves either the old or the new copy.
package store

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// Prefs is a namespace -> key -> value store. Values are kept as strings in the
// file; typed accessors convert on the way in and out.
type Prefs struct {
	mu   sync.Mutex
	path string
	data map[string]map[string]string
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*Prefs, error) {
	p := &Prefs{
		path: path,
		data: map[string]map[string]string{},
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &p.data); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", path, err)
	}
	if p.data == nil {
		p.data = map[string]map[string]string{}
	}
	return p, nil
}

// Path returns the backing file.
func (p *Prefs) Path() string {
	return p.path
}

func (p *Prefs) get(ns, key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.data[ns][key]
	return v, ok
}

func (p *Prefs) put(ns, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data[ns] == nil {
		p.data[ns] = map[string]string{}
	}
	p.data[ns][key] = value
	return p.flushLocked()
}

// Clear removes every key of a namespace.
func (p *Prefs) Clear(ns string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, ns)
	return p.flushLocked()
}

func (p *Prefs) flushLocked() error {
	out, err := yaml.Marshal(p.data)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	dir := filepath.Dir(p.path)
	tmp, err := os.CreateTemp(dir, ".prefs-*")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}

func (p *Prefs) GetString(ns, key, def string) string {
	if v, ok := p.get(ns, key); ok {
		return v
	}
	return def
}

func (p *Prefs) PutString(ns, key, value string) error {
	return p.put(ns, key, value)
}

// GetBool returns def when the key is missing or unparsable.
func (p *Prefs) GetBool(ns, key string, def bool) bool {
	v, ok := p.get(ns, key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (p *Prefs) PutBool(ns, key string, value bool) error {
	return p.put(ns, key, strconv.FormatBool(value))
}

// GetInt returns def when the key is missing or unparsable.
func (p *Prefs) GetInt(ns, key string, def int) int {
	v, ok := p.get(ns, key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (p *Prefs) PutInt(ns, key string, value int) error {
	return p.put(ns, key, strconv.Itoa(value))
}

// GetBytes returns the stored blob and whether it was present and decodable.
func (p *Prefs) GetBytes(ns, key string) ([]byte, bool) {
	v, ok := p.get(ns, key)
	if !ok {
		return nil, false
	}
	b, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, false
	}
	return b, true
}

// PutBytes stores a blob base64-encoded.
func (p *Prefs) PutBytes(ns, key string, value []byte) error {
	return p.put(ns, key, base64.StdEncoding.EncodeToString(value))
}
