package geo

import "math"

// TileSize is the edge length of a map tile in pixels.
const TileSize = 256

// MaxLatitude is the web-mercator latitude limit.
const MaxLatitude = 85.05112878

// Project converts a coordinate to world pixel coordinates at the given zoom.
func Project(lat, lon float64, zoom int) (x, y float64) {
	lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
	scale := TileSize * math.Exp2(float64(zoom))
	sinLat := math.Sin(toRad(lat))

	x = (lon + 180) / 360 * scale
	y = (0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)) * scale
	return x, y
}

// Unproject converts world pixel coordinates at the given zoom back to a
// latitude/longitude pair. Longitude is wrapped into [-180, 180).
func Unproject(x, y float64, zoom int) (lat, lon float64) {
	scale := TileSize * math.Exp2(float64(zoom))
	lon = x/scale*360 - 180
	n := math.Pi - 2*math.Pi*y/scale
	lat = 180 / math.Pi * math.Atan(math.Sinh(n))

	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lat, lon - 180
}

// Tile returns the x/y index of the tile containing the coordinate.
func Tile(lat, lon float64, zoom int) (tx, ty int) {
	x, y := Project(lat, lon, zoom)
	n := int(math.Exp2(float64(zoom)))
	tx = clampTile(int(math.Floor(x/TileSize)), n)
	ty = clampTile(int(math.Floor(y/TileSize)), n)
	return tx, ty
}

func clampTile(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
