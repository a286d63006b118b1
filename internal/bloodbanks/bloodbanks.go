// Package bloodbanks is the offline blood bank directory.
package bloodbanks

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

//go:embed kolkata.json
var kolkataJSON []byte

const earthRadiusKm = 6371.0

type Bank struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Pincode   string  `json:"pincode"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Result is a bank with its distance from the query point.
type Result struct {
	Bank
	DistanceKm float64
}

type Directory struct {
	banks []Bank
}

// Default returns the bundled Kolkata directory.
func Default() (*Directory, error) {
	return Parse(kolkataJSON)
}

func Parse(data []byte) (*Directory, error) {
	var banks []Bank
	if err := json.Unmarshal(data, &banks); err != nil {
		return nil, fmt.Errorf("parse blood bank directory: %w", err)
	}
	return &Directory{banks: banks}, nil
}

func (d *Directory) All() []Bank {
	out := make([]Bank, len(d.banks))
	copy(out, d.banks)
	return out
}

// Nearest returns up to limit banks ordered by distance from (lat, lon).
// limit <= 0 returns all of them.
func (d *Directory) Nearest(lat, lon float64, limit int) []Result {
	out := make([]Result, 0, len(d.banks))
	for _, b := range d.banks {
		out = append(out, Result{Bank: b, DistanceKm: Distance(lat, lon, b.Latitude, b.Longitude)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (d *Directory) ByPincode(pincode string) []Bank {
	pincode = strings.TrimSpace(pincode)
	out := make([]Bank, 0)
	for _, b := range d.banks {
		if b.Pincode == pincode {
			out = append(out, b)
		}
	}
	return out
}

// Distance is the haversine great-circle distance in kilometres.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
