// Package geom provides the planar vector and polygon math used by the
// simulation core.
//
//   - [Vector]: immutable 2D value type
//   - [Area], [Centroid]: shoelace formulas over a closed vertex sequence
//   - [RegularPolygon], [Star], [Circle], [Rect]: counterclockwise shape builders
//
// Every function is pure. Polygons are plain []Vector slices in counterclockwise
// order; the last vertex connects back to the first.
package geom
