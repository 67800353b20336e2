// Package geo resolves place names found in message text to map coordinates.
package geo

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Coords is a (latitude, longitude) pair.
type Coords [2]float64

// fallback is the Middle East centroid used when neither the place nor the
// country is known. Coordinates must always resolve to something the map
// can render.
var fallback = Coords{28.0, 43.0}

// Table holds the place-name and country coordinate lookups. It is built
// once at startup and passed to the normalizer; nothing mutates it afterwards.
type Table struct {
	Places    map[string]Coords
	Countries map[string]Coords
}

// DefaultTable returns the built-in location table. Place names are in the
// canonical display language because that is what the upstream messages use.
func DefaultTable() *Table {
	return &Table{
		Places: map[string]Coords{
			"加沙":     {31.5, 34.47},
			"加沙北部":   {31.5, 34.47},
			"加沙南部":   {31.3, 34.35},
			"加沙城":    {31.5, 34.47},
			"特拉维夫":   {32.08, 34.78},
			"耶路撒冷":   {31.77, 35.22},
			"海法":     {32.82, 34.98},
			"德黑兰":    {35.69, 51.39},
			"霍尔木兹海峡": {26.56, 56.27},
			"红海":     {20.0, 38.0},
			"黎巴嫩":    {33.27, 35.20},
			"贝鲁特":    {33.89, 35.49},
			"大马士革":   {33.51, 36.29},
			"波斯湾":    {27.0, 52.0},
			"约旦河西岸":  {32.0, 35.2},
			"拉马拉":    {31.95, 35.23},
			"汗尤尼斯":   {31.34, 34.31},
			"拉法":     {31.29, 34.25},
			"纳戈尔诺":   {39.81, 46.76},
			"戈兰高地":   {33.18, 35.73},
			"阿克萨":    {31.78, 35.23},
			"伊拉克":    {33.22, 43.68},
			"巴格达":    {33.31, 44.36},
			"叙利亚":    {34.80, 38.99},
			"也门":     {15.55, 47.88},
			"萨那":     {15.37, 47.61},
			"荷台达":    {14.80, 42.95},
			"沙特":     {23.89, 45.08},
			"利雅得":    {24.71, 46.68},
			"阿联酋":    {23.42, 53.85},
			"阿布扎比":   {24.45, 54.38},
			"迪拜":     {25.20, 55.27},
			"卡塔尔":    {25.35, 51.18},
			"多哈":     {25.29, 51.53},
			"科威特":    {29.31, 47.48},
			"巴林":     {26.06, 50.56},
			"阿曼":     {21.47, 55.98},
			"马斯喀特":   {23.59, 58.38},
			"土耳其":    {38.96, 35.24},
			"安卡拉":    {39.93, 32.85},
			"伊斯坦布尔":  {41.01, 28.97},
			"约旦":     {30.59, 36.24},
			"安曼":     {31.95, 35.91},
			"埃及":     {26.82, 30.80},
			"开罗":     {30.04, 31.24},
			"塞浦路斯":   {35.13, 33.43},
			"尼科西亚":   {35.19, 33.38},
		},
		Countries: map[string]Coords{
			"israel":  {32.0, 35.0},
			"iran":    {32.0, 53.0},
			"usa":     {28.5, 45.0}, // US forces in the region, not CONUS
			"saudi":   {24.0, 45.0},
			"uae":     {24.0, 54.0},
			"yemen":   {15.5, 48.0},
			"syria":   {35.0, 38.0},
			"lebanon": {34.0, 36.0},
			"turkey":  {39.0, 35.0},
			"iraq":    {33.0, 44.0},
			"jordan":  {31.0, 36.0},
			"egypt":   {27.0, 30.0},
		},
	}
}

type tableFile struct {
	Places    map[string][]float64 `yaml:"places"`
	Countries map[string][]float64 `yaml:"countries"`
}

// LoadTable returns the default table merged with the override file at path.
// A missing file is not an error; a malformed one is.
func LoadTable(path string) (*Table, error) {
	t := DefaultTable()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read locations file: %w", err)
	}

	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse locations file %s: %w", path, err)
	}

	for name, c := range f.Places {
		if len(c) == 2 {
			t.Places[name] = Coords{c[0], c[1]}
		}
	}
	for name, c := range f.Countries {
		if len(c) == 2 {
			t.Countries[name] = Coords{c[0], c[1]}
		}
	}
	return t, nil
}

// ExtractLocation returns the longest known place name contained in text,
// or "" when none is found. Longest wins so a district beats the city that
// contains it.
func (t *Table) ExtractLocation(text string) string {
	best := ""
	for name := range t.Places {
		if !strings.Contains(text, name) {
			continue
		}
		// Tie-break on name for deterministic output across runs.
		if len(name) > len(best) || (len(name) == len(best) && name < best) {
			best = name
		}
	}
	return best
}

// Coordinates resolves a location name, falling back to the country and
// finally to the regional centroid. It never fails.
func (t *Table) Coordinates(locationName, country string) Coords {
	if locationName != "" {
		if c, ok := t.Places[locationName]; ok {
			return c
		}
	}
	if c, ok := t.Countries[country]; ok {
		return c
	}
	return fallback
}
