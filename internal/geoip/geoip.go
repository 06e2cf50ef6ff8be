// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves visitor IP addresses to ISO country codes using
// a MaxMind GeoLite2-Country database. Lookups degrade gracefully: when
// no database is configured every lookup returns an empty code.
package geoip

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/mesrs/portal-go/internal/util"
)

// Lookup wraps a MaxMind reader with hot-reload support.
type Lookup struct {
	db        *maxminddb.Reader
	dbPath    string
	dbModTime time.Time
	enabled   bool
	mu        sync.RWMutex
}

// geoRecord matches the GeoLite2-Country database structure.
type geoRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// NewLookup creates a Lookup. Init must be called before use.
func NewLookup() *Lookup {
	return &Lookup{}
}

// Init loads the database from dbPath. An empty path disables
// geolocation without error.
func (g *Lookup) Init(dbPath string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dbPath = dbPath
	if dbPath == "" {
		g.enabled = false
		return nil
	}
	return g.loadDatabase()
}

// loadDatabase loads or reloads the MaxMind database.
// Caller must hold g.mu write lock.
func (g *Lookup) loadDatabase() error {
	info, err := os.Stat(g.dbPath)
	if err != nil {
		g.enabled = false
		if os.IsNotExist(err) {
			return fmt.Errorf("GeoIP database not found: %s", g.dbPath)
		}
		return fmt.Errorf("GeoIP database stat error: %w", err)
	}

	// Skip reload if not modified
	if g.db != nil && info.ModTime().Equal(g.dbModTime) {
		return nil
	}

	if g.db != nil {
		_ = g.db.Close()
		g.db = nil
	}

	db, err := maxminddb.Open(g.dbPath)
	if err != nil {
		g.enabled = false
		return fmt.Errorf("failed to open GeoIP database: %w", err)
	}

	g.db = db
	g.dbModTime = info.ModTime()
	g.enabled = true
	return nil
}

// Reload reloads the database if the file on disk has changed.
// Safe to call periodically from the scheduler.
func (g *Lookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dbPath == "" {
		return nil
	}
	return g.loadDatabase()
}

// LookupCountry returns the 2-letter ISO country code for an IP address.
// Private and loopback addresses map to "LOCAL"; anything unresolvable
// returns an empty string.
func (g *Lookup) LookupCountry(ip string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return ""
	}

	if parsedIP.IsLoopback() || util.IsPrivateIP(parsedIP) {
		return "LOCAL"
	}

	if !g.enabled || g.db == nil {
		return ""
	}

	var record geoRecord
	if err := g.db.Lookup(parsedIP, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// IsEnabled reports whether a database is loaded.
func (g *Lookup) IsEnabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.enabled
}

// Close releases the underlying reader.
func (g *Lookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db != nil {
		err := g.db.Close()
		g.db = nil
		g.enabled = false
		return err
	}
	return nil
}

// CountryName returns a display name for a 2-letter country code,
// covering the countries most represented in the portal's audience.
func CountryName(code string) string {
	countries := map[string]string{
		"LOCAL": "Réseau local",
		"TN":    "Tunisie",
		"FR":    "France",
		"DZ":    "Algérie",
		"MA":    "Maroc",
		"LY":    "Libye",
		"EG":    "Égypte",
		"SN":    "Sénégal",
		"CI":    "Côte d'Ivoire",
		"ML":    "Mali",
		"NE":    "Niger",
		"MR":    "Mauritanie",
		"BE":    "Belgique",
		"CH":    "Suisse",
		"CA":    "Canada",
		"DE":    "Allemagne",
		"IT":    "Italie",
		"ES":    "Espagne",
		"GB":    "Royaume-Uni",
		"US":    "États-Unis",
		"SA":    "Arabie saoudite",
		"AE":    "Émirats arabes unis",
		"QA":    "Qatar",
		"TR":    "Turquie",
		"CN":    "Chine",
		"JP":    "Japon",
	}

	if name, ok := countries[code]; ok {
		return name
	}
	if code == "" {
		return "Inconnu"
	}
	return code
}
