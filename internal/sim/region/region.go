// Package region assembles containment polygons from GeoJSON and places them
// on the simulation plane.
package region

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"epimotion/internal/sim/motion"
)

// Regions maps a feature's "name" property to its outer ring. For a
// MultiPolygon the largest member is kept.
type Regions map[string]orb.Ring

func LoadGeoJSON(path string) (Regions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := Regions{}
	for i, f := range fc.Features {
		name := strings.TrimSpace(f.Properties.MustString("name", ""))
		if name == "" {
			name = fmt.Sprintf("feature_%d", i)
		}
		ring, ok := outerRing(f.Geometry)
		if !ok {
			continue
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("%s: duplicate region name %q", path, name)
		}
		out[name] = ring
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no polygon features", path)
	}
	return out, nil
}

func (r Regions) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func outerRing(g orb.Geometry) (orb.Ring, bool) {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 {
			return nil, false
		}
		return v[0], true
	case orb.MultiPolygon:
		var best orb.Ring
		bestArea := -1.0
		for _, p := range v {
			if len(p) == 0 {
				continue
			}
			if a := math.Abs(planar.Area(p[0])); a > bestArea {
				best, bestArea = p[0], a
			}
		}
		return best, best != nil
	default:
		return nil, false
	}
}

// Place scales ring uniformly so its longer side spans size, moves its
// bounding box corner to origin, and drops the repeated closing vertex.
func Place(ring orb.Ring, origin orb.Point, size float64) (motion.Polygon, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %g", motion.ErrInvalidGeometry, size)
	}
	pts := []orb.Point(ring)
	// Ring.Closed is false below four points, so compare the ends directly.
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	b := ring.Bound()
	extent := math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	if extent == 0 {
		return nil, fmt.Errorf("%w: ring has zero extent", motion.ErrInvalidGeometry)
	}
	scale := size / extent

	poly := make(motion.Polygon, len(pts))
	for i, p := range pts {
		poly[i] = motion.Point{
			X: origin[0] + (p[0]-b.Min[0])*scale,
			Y: origin[1] + (p[1]-b.Min[1])*scale,
		}
	}
	if err := poly.Validate(); err != nil {
		return nil, err
	}
	return poly, nil
}

// Load reads path and places the named region.
func Load(path, name string, origin [2]float64, size float64) (motion.Polygon, error) {
	regions, err := LoadGeoJSON(path)
	if err != nil {
		return nil, err
	}
	ring, ok := regions[name]
	if !ok {
		return nil, fmt.Errorf("region %q not in %s (have %s)", name, path, strings.Join(regions.Names(), ", "))
	}
	return Place(ring, orb.Point{origin[0], origin[1]}, size)
}
